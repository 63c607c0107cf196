// Package harness runs YAML-defined enforcement scenarios.
//
// A scenario declares classes (ordered field lists with initial values)
// and a sequence of steps (construct, read, write, delete, release,
// reconcile) driven against a fresh engine. Every run is isolated and
// deterministic: a private engine, a recording sink, and sequential
// violation IDs, so the same scenario always produces byte-identical
// traces.
//
// Traces are compared against golden files with goldie. To regenerate
// after an intentional behavior change:
//
//	go test ./internal/harness -update
//
// The trace deliberately omits call-origin contexts: file paths and line
// numbers vary across machines and refactors, while the violation
// stream (codes, keys, messages, sequence) is the contract under test.
package harness
