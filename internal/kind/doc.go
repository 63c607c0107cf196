// Package kind classifies runtime values into the structural categories
// used by the enforcement engine.
//
// The enforced object model stores arbitrary Go values, but type checking
// operates on a coarse classification, not on concrete Go types. A write
// that replaces an int with a float64 is fine (both KindNumber); a write
// that replaces an int with a string is a type-changed write.
//
// Two special categories exist:
//
//   - KindNull: the untyped nil value. Null is the legitimate
//     optional-value placeholder - transitions to or from null are
//     always permitted.
//   - KindAbsent: the Absent sentinel, the analog of an undefined
//     property slot. Once construction finishes, no live property may
//     hold Absent, so transitions involving it are always rejected.
//
// The classification is deliberately permissive (null -> array -> null is
// allowed) - it trades soundness for a low false-positive rate.
package kind
