package vigil

import (
	"github.com/roach88/vigil/internal/diag"
	"github.com/roach88/vigil/internal/engine"
	"github.com/roach88/vigil/internal/kind"
)

// Engine owns the enforcement registries. Construct one per isolation
// domain; tests typically construct their own.
type Engine = engine.Engine

// Handle is the instrumented wrapper around an enforced instance.
type Handle = engine.Handle

// Definition describes an enforceable class.
type Definition = engine.Definition

// EnforcedBase is the marker a class embeds to opt into enforcement.
// Definitions without it pass through unwrapped, even in full mode.
type EnforcedBase = engine.EnforcedBase

// Descriptor is the structural property descriptor rejected by Define.
type Descriptor = engine.Descriptor

// Mode selects the enforcement level for subsequent constructions.
type Mode = engine.Mode

// Enforcement modes.
const (
	ModeFull     = engine.ModeFull
	ModeSeal     = engine.ModeSeal
	ModeDisabled = engine.ModeDisabled
)

// Violation is a soft enforcement violation delivered to the sink.
type Violation = diag.Violation

// Sink receives soft violations.
type Sink = diag.Sink

// Option configures an Engine.
type Option = engine.Option

// Engine options.
var (
	WithMode           = engine.WithMode
	WithSink           = engine.WithSink
	WithTokenGenerator = engine.WithTokenGenerator
	WithWarnLimit      = engine.WithWarnLimit
)

// Absent is the undefined-slot marker: reads of missing properties return
// it, and no finalized property may hold it.
var Absent = kind.Absent

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool { return kind.IsAbsent(v) }

// NewEngine creates an Engine in full-enforcement mode with the default
// warn-level log sink.
func NewEngine(opts ...Option) *Engine {
	return engine.New(opts...)
}

// DefFunc builds an enforceable Definition from a name and init function.
func DefFunc(name string, init func(self *Handle, args ...any) error) Definition {
	return engine.DefFunc(name, init)
}

// ParseMode converts a configuration string ("full", "seal", "disabled")
// into a Mode; anything else is a hard configuration error.
func ParseMode(s string) (Mode, error) {
	return engine.ParseMode(s)
}

// SetWarningCallback replaces e's diagnostics sink with fn. A nil fn is
// a hard configuration error, active regardless of the current mode.
func SetWarningCallback(e *Engine, fn func(Violation)) error {
	if fn == nil {
		return &diag.HardError{
			Code:    diag.CodeInvalidCallback,
			Message: "warning callback must be non-nil",
		}
	}
	return e.SetSink(diag.SinkFunc(fn))
}

// IsHardViolation reports whether err is a hard enforcement violation
// (delete/define attempt, invalid mode, invalid callback, invalid
// construction target).
func IsHardViolation(err error) bool { return diag.IsHard(err) }
