package engine

import (
	"fmt"

	"github.com/roach88/vigil/internal/diag"
)

// Mode selects the enforcement level for subsequent constructions.
//
// Objects already constructed keep the behavior of the mode active when
// they were built; changing the mode never retrofits existing handles.
type Mode int

const (
	// ModeFull routes every property operation through the interception
	// handler: fixed property set, type-change rejection, release
	// tracking, shape verification.
	ModeFull Mode = iota

	// ModeSeal skips the interception path and applies only a shallow
	// structural guard: no new properties, no deletions. Values may
	// change type freely.
	ModeSeal

	// ModeDisabled constructs raw instances with no wrapper behavior at
	// all - no sessions, no checks, no tracked identity.
	ModeDisabled
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeSeal:
		return "seal"
	case ModeDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// valid reports whether m is one of the three enumerated modes.
func (m Mode) valid() bool {
	return m == ModeFull || m == ModeSeal || m == ModeDisabled
}

// ParseMode converts a configuration string into a Mode.
// Returns a hard configuration error for anything but the three
// enumerated names.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "full":
		return ModeFull, nil
	case "seal":
		return ModeSeal, nil
	case "disabled":
		return ModeDisabled, nil
	default:
		return 0, &diag.HardError{
			Code:    diag.CodeInvalidMode,
			Message: fmt.Sprintf("unknown mode %q: must be one of full, seal, disabled", s),
		}
	}
}
