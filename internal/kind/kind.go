package kind

import "reflect"

// Kind is the structural classification of a property value.
type Kind int

const (
	// KindInvalid is the zero Kind; it is never produced by Of.
	KindInvalid Kind = iota
	// KindNull classifies the untyped nil value.
	KindNull
	// KindAbsent classifies the Absent sentinel (undefined property slot).
	KindAbsent
	// KindBool classifies bool values.
	KindBool
	// KindNumber classifies all integer and float values.
	KindNumber
	// KindText classifies string values.
	KindText
	// KindArray classifies slices and arrays.
	KindArray
	// KindObject classifies maps, structs, pointers and everything else
	// with no more specific category.
	KindObject
	// KindFunc classifies function values.
	KindFunc
	// KindSymbol classifies Symbol values.
	KindSymbol
)

// String returns the classification name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindAbsent:
		return "absent"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunc:
		return "function"
	case KindSymbol:
		return "symbol"
	default:
		return "invalid"
	}
}

// absent is the unexported type behind the Absent sentinel.
// A distinct type (rather than nil) keeps "property missing" and
// "property deliberately null" distinguishable.
type absent struct{}

// Absent is the undefined-slot marker. Reads of missing properties return
// it, and no finalized property may ever hold it.
var Absent any = absent{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// Symbol is an opaque named token, the analog of a symbol-typed property
// value. Symbols compare by name.
type Symbol string

// Of classifies a value.
//
// Classification is by dynamic type, not by value: a typed nil pointer
// classifies as KindObject, only the untyped nil is KindNull. Numeric
// types of every width and signedness collapse into KindNumber.
func Of(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case absent:
		return KindAbsent
	case bool:
		return KindBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return KindNumber
	case string:
		return KindText
	case Symbol:
		return KindSymbol
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Func:
		return KindFunc
	case reflect.Slice, reflect.Array:
		return KindArray
	default:
		return KindObject
	}
}

// ValidChange reports whether replacing a value of kind old with a value
// of kind new is a permitted transition.
//
// Evaluation order matters:
//  1. Either side null: valid (null is the optional-value placeholder).
//  2. Either side absent: invalid (finalized properties always hold a
//     concrete value).
//  3. Otherwise: valid iff both sides share the same classification.
func ValidChange(old, new Kind) bool {
	if old == KindNull || new == KindNull {
		return true
	}
	if old == KindAbsent || new == KindAbsent {
		return false
	}
	return old == new
}
