// Package store provides SQLite-backed durable storage for violation
// audit logs.
//
// The store is an append-only log of soft violations. The enforcement
// core never requires it: it hangs off the diagnostics sink seam (see
// Sink), so an engine without an audit store behaves identically.
//
// Ordering always uses the engine-assigned seq column (logical clock),
// never timestamps, so listings are deterministic. Violation IDs are
// unique; re-inserting an already-recorded violation is a silent no-op,
// which makes the sink safe to retry.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
package store
