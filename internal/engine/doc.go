// Package engine implements the vigil enforcement engine.
//
// The engine retrofits static-typing-like discipline onto dynamic property
// objects: classes that opt in are constructed through the engine, and every
// subsequent property operation on their instances routes through a Handle
// that enforces the rules established at construction time.
//
// ARCHITECTURE:
//
// Single-Threaded Cooperative Model:
// All handler operations execute synchronously within the caller's turn.
// The engine owns four registries - construction sessions, class shape
// records, the release ledger, and warn counters - and mutates them without
// locks. There is no blocking operation anywhere in the core. The session
// map is not partitioned per construction: an error anywhere during
// overlapping construction clears the whole map, disabling checks for
// everything currently under construction. That is the designed invariant,
// not an accident.
//
// Object Lifecycle:
//  1. Engine.New registers a construction session (raw instance + wrapper)
//     before the class Init runs, so the constructor may freely establish
//     the property set - and so any self-reference captured during
//     construction is the wrapper, never the raw object.
//  2. Finalization closes the session, verifies the instance's shape
//     against the class baseline (full mode), and hands back the wrapper.
//  3. Release transfers the identity into the release ledger along with the
//     captured release call site; every later access is a violation.
//
// Identity is a monotonically increasing token from a logical clock, never
// an object pointer. The release ledger stores tokens only, so remembering
// that an object was released never keeps it alive.
//
// Reconcile is the deliberate end-of-batch step that detects classes
// instantiated without going through New: any session still open at
// reconcile time is reported once per class and cleared.
package engine
