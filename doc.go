// Package vigil retrofits static-typing-like discipline onto dynamic
// property objects at runtime.
//
// A class opts in by embedding EnforcedBase in its Definition and being
// constructed through Engine.New. From then on every property operation on
// the instance routes through its Handle, which:
//
//   - rejects access to properties outside the constructor-established set
//   - rejects silent type changes on existing properties
//   - rejects structural mutation (deletion, property definition) outright
//   - detects inconsistent object shape across instances of the same class
//   - detects use-after-release access, retaining the call sites of both
//     the release and the offending access
//
// Soft violations (shape and type mistakes) are reported to a pluggable
// diagnostics sink while the operation degrades gracefully; hard
// violations (attempts to bypass enforcement itself) are returned as
// errors. See the internal/engine package for the enforcement model.
//
// Minimal use:
//
//	type Point struct{ vigil.EnforcedBase }
//
//	func (Point) ClassName() string { return "Point" }
//	func (Point) Init(self *vigil.Handle, args ...any) error {
//		self.Set("x", args[0])
//		self.Set("y", args[1])
//		return nil
//	}
//
//	eng := vigil.NewEngine()
//	p, err := eng.New(Point{}, 1, 2)
//	...
//	p.Set("x", 3)        // fine
//	p.Set("x", "three")  // reported and discarded
//	eng.Release(p)
//	p.Get("x")           // reported: use after release
package vigil
