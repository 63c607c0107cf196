package engine

import (
	"fmt"

	"github.com/roach88/vigil/internal/diag"
)

// New is the construction protocol entry point.
//
// In disabled mode, or for definitions that do not embed EnforcedBase,
// the instance is constructed directly and handed back as an untracked
// passthrough - no session, no checks, no identity.
//
// Otherwise New allocates an identity, opens a construction session, runs
// the class Init with the wrapper as the receiving context, and on
// success finalizes: the session closes, the shape validator runs (full
// mode), and the wrapper is returned. If Init fails, every in-flight
// construction session is cleared and the error propagates; no shape
// record is touched.
//
// A nil definition is a hard violation in every mode - target validation
// is configuration correctness, independent of enforcement level.
func (e *Engine) New(def Definition, args ...any) (*Handle, error) {
	if def == nil {
		return nil, &diag.HardError{
			Code:    diag.CodeInvalidTarget,
			Message: "New requires a non-nil class definition",
		}
	}
	origin := diag.Capture(1)

	h, err := e.construct(def, args)
	if err != nil {
		return nil, err
	}
	e.finalize(h, origin)
	return h, nil
}

// Construct is the low-level half of New: it opens the construction
// session and runs Init, but does not finalize. The session stays open
// until the next Reconcile, which will report the class as instantiated
// without New and disable enforcement for the instance.
//
// It exists for hosts that drive finalization themselves and for
// exercising the missing-New detection; application code wants New.
func (e *Engine) Construct(def Definition, args ...any) (*Handle, error) {
	if def == nil {
		return nil, &diag.HardError{
			Code:    diag.CodeInvalidTarget,
			Message: "Construct requires a non-nil class definition",
		}
	}
	return e.construct(def, args)
}

func (e *Engine) construct(def Definition, args []any) (*Handle, error) {
	mode := e.mode

	// Disabled mode and unenforced classes construct raw: the handle is a
	// transparent passthrough with no tracked identity.
	if _, enforced := def.(Enforceable); mode == ModeDisabled || !enforced {
		obj := newObject(0, def.ClassName())
		h := &Handle{eng: e, obj: obj, guard: guardPass}
		if err := def.Init(h, args...); err != nil {
			e.clearSessions()
			return nil, fmt.Errorf("construct %s: %w", def.ClassName(), err)
		}
		return h, nil
	}

	guard := guardFull
	if mode == ModeSeal {
		guard = guardSeal
	}

	id := e.ids.Next()
	obj := newObject(id, def.ClassName())
	h := &Handle{eng: e, obj: obj, guard: guard}

	// The session must exist before Init runs: the constructor is
	// legitimately establishing the property set, and the wrapper is the
	// live identity from the first instruction onward.
	e.sessions[id] = &session{obj: obj, handle: h}

	if err := def.Init(h, args...); err != nil {
		e.clearSessions()
		return nil, fmt.Errorf("construct %s: %w", def.ClassName(), err)
	}

	return h, nil
}

// finalize closes the instance's construction session and, in full mode,
// runs the shape consistency validator. Untracked passthroughs have no
// session to close.
func (e *Engine) finalize(h *Handle, origin diag.Context) {
	if h.obj.id == 0 {
		return
	}
	delete(e.sessions, h.obj.id)
	if h.guard == guardFull {
		e.verifyShape(h.obj, origin)
	}
}
