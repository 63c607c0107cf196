// Package diag defines the diagnostics surface of the enforcement engine.
//
// Two severities exist, mirroring the enforcement model:
//
// Soft violations are Violation values delivered to a Sink. The operation
// that triggered them still completes from the caller's point of view - a
// read returns whatever the underlying store holds, an invalid write is
// discarded. Control flow is never disturbed.
//
// Hard violations are *HardError values returned through the normal error
// path. They represent attempts to bypass the enforcement model itself
// (deleting a property, redefining structure, misconfiguring the engine)
// and are never swallowed.
//
// Every soft violation carries the call-origin Context captured at the
// offending operation; use-after-release violations additionally carry the
// Context captured when the object was released.
package diag
