package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes soft violations.
type Code string

const (
	// CodeMissingRead indicates a read of a property outside the
	// constructor-established set.
	CodeMissingRead Code = "MISSING_PROPERTY_READ"

	// CodeUnknownWrite indicates a write to a property outside the
	// constructor-established set.
	CodeUnknownWrite Code = "SET_NONEXISTENT_PROPERTY"

	// CodeTypeChangedWrite indicates a write whose value classification
	// differs from the existing value's classification.
	CodeTypeChangedWrite Code = "TYPE_CHANGED_WRITE"

	// CodeInconsistentShape indicates a constructed instance whose
	// property set diverges from its class baseline.
	CodeInconsistentShape Code = "INCONSISTENT_PROPERTIES"

	// CodeReleasedRead indicates a read on a released object.
	CodeReleasedRead Code = "READ_ON_RELEASED"

	// CodeReleasedWrite indicates a write on a released object.
	CodeReleasedWrite Code = "WRITE_ON_RELEASED"

	// CodeMissingNew indicates a class was instantiated without going
	// through the construction protocol entry point.
	CodeMissingNew Code = "MISSING_NEW"
)

// Violation is a soft enforcement violation.
//
// Violations are values, not errors: they are delivered to the configured
// Sink and the triggering operation degrades gracefully. The ID is assigned
// by the engine's token generator so traces can be correlated across the
// log stream and the audit store.
type Violation struct {
	// ID uniquely identifies this report.
	ID string

	// Code identifies the violation category.
	Code Code

	// Class names the enforced class involved.
	Class string

	// Key names the property involved, when one is.
	Key string

	// Message is a human-readable description.
	Message string

	// Origin is the call site of the offending operation.
	Origin Context

	// Release is the call site of the Release call, for use-after-release
	// violations. Nil otherwise.
	Release Context

	// Seq is the logical sequence number assigned by the engine.
	Seq int64

	// Details carries additional context (differing keys, kinds).
	Details map[string]string
}

// String renders the violation for the default log sink.
func (v Violation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", v.Code, v.Message)
	if v.Class != "" {
		fmt.Fprintf(&b, " (class=%s", v.Class)
		if v.Key != "" {
			fmt.Fprintf(&b, ", key=%s", v.Key)
		}
		b.WriteString(")")
	}
	return b.String()
}

// HardCode categorizes hard violations.
type HardCode string

const (
	// CodeDeleteRejected indicates a delete attempt on an instrumented object.
	CodeDeleteRejected HardCode = "DELETE_REJECTED"

	// CodeDefineRejected indicates a structural-define attempt.
	CodeDefineRejected HardCode = "DEFINE_REJECTED"

	// CodeInvalidMode indicates SetMode was given an unknown mode value.
	CodeInvalidMode HardCode = "INVALID_MODE"

	// CodeInvalidCallback indicates SetWarningCallback was given a nil sink.
	CodeInvalidCallback HardCode = "INVALID_CALLBACK"

	// CodeInvalidTarget indicates New was given something that is not an
	// enforceable class definition.
	CodeInvalidTarget HardCode = "INVALID_BUILD_TARGET"
)

// HardError is a hard enforcement violation, propagated as an error.
//
// Hard errors terminate the triggering operation immediately - they are
// attempts to bypass the enforcement model, not data-shape mistakes.
type HardError struct {
	// Code identifies the error category.
	Code HardCode

	// Message is a human-readable description.
	Message string

	// Class names the enforced class involved, when one is.
	Class string

	// Key names the property involved, when one is.
	Key string
}

// Error implements the error interface.
func (e *HardError) Error() string {
	if e.Class != "" && e.Key != "" {
		return fmt.Sprintf("%s: %s (class=%s, key=%s)", e.Code, e.Message, e.Class, e.Key)
	}
	if e.Class != "" {
		return fmt.Sprintf("%s: %s (class=%s)", e.Code, e.Message, e.Class)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsHard reports whether err is (or wraps) a HardError.
func IsHard(err error) bool {
	var he *HardError
	return errors.As(err, &he)
}

// HardCodeOf extracts the HardCode from err, or "" if err is not a HardError.
func HardCodeOf(err error) HardCode {
	var he *HardError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

// NewDeleteError creates the hard error for a delete attempt.
func NewDeleteError(class, key string) *HardError {
	return &HardError{
		Code:    CodeDeleteRejected,
		Message: "deletion is never permitted on an instrumented object",
		Class:   class,
		Key:     key,
	}
}

// NewDefineError creates the hard error for a structural-define attempt.
func NewDefineError(class, key string) *HardError {
	return &HardError{
		Code:    CodeDefineRejected,
		Message: "structural redefinition is never permitted on an instrumented object",
		Class:   class,
		Key:     key,
	}
}
