package engine

import (
	"fmt"

	"github.com/roach88/vigil/internal/diag"
	"github.com/roach88/vigil/internal/kind"
)

// guard selects the decision logic a Handle applies.
type guard int

const (
	// guardFull routes operations through the full interception handler.
	guardFull guard = iota
	// guardSeal applies only the shallow structural guard.
	guardSeal
	// guardPass performs no checks at all (disabled mode, unenforced
	// classes).
	guardPass
)

// reservedMetaKeys are property names generic language machinery probes
// on arbitrary values (thenable-protocol probing, serialization hooks,
// printers). Reads of these on an instance that does not define them are
// interoperability, not bugs, and are never reported.
var reservedMetaKeys = map[string]bool{
	"then":     true,
	"toJSON":   true,
	"toString": true,
	"inspect":  true,
}

// Handle is the instrumented wrapper around a raw instance. Exactly one
// Handle exists per enforced instance for its lifetime; every property
// operation on the instance goes through it.
type Handle struct {
	eng   *Engine
	obj   *Object
	guard guard
}

// Class returns the class name the instance was constructed under.
func (h *Handle) Class() string { return h.obj.class }

// ID returns the instance's identity token, or 0 if untracked.
func (h *Handle) ID() int64 { return h.obj.id }

// Keys returns the property names in insertion order.
func (h *Handle) Keys() []string { return h.obj.Keys() }

// Has reports whether the property exists, without triggering a read.
func (h *Handle) Has(key string) bool { return h.obj.Has(key) }

// Get reads a property.
//
// Reads never fail: the return value is whatever the underlying store
// holds, or kind.Absent for a missing property. A read on a released
// instance is reported with both the release context and this access
// context; a read of a missing, non-reserved property is reported as a
// missing-property read.
func (h *Handle) Get(key string) any {
	if h.guard != guardFull {
		v, ok := h.obj.get(key)
		if !ok {
			return kind.Absent
		}
		return v
	}
	return h.eng.read(h.obj, key, diag.Capture(1))
}

// Set writes a property.
//
// Writes never fail from the caller's point of view: an invalid write is
// reported to the sink and discarded, a valid write succeeds. During an
// active construction session, new-property and type-change checks are
// suppressed so the constructor can establish the property set.
func (h *Handle) Set(key string, value any) {
	switch h.guard {
	case guardPass:
		h.obj.set(key, value)
	case guardSeal:
		h.eng.writeSealed(h.obj, key, value, diag.Capture(1))
	default:
		h.eng.write(h.obj, key, value, diag.Capture(1))
	}
}

// Delete rejects property deletion.
//
// Deletion is never permitted on an instrumented object, construction or
// not: it is a hard violation, returned as an error. Only untracked
// passthrough instances actually delete.
func (h *Handle) Delete(key string) error {
	if h.guard == guardPass {
		h.obj.delete(key)
		return nil
	}
	return diag.NewDeleteError(h.obj.class, key)
}

// Define rejects structural redefinition.
//
// A structural define would bypass the write and delete checks, so it is
// a hard violation in every enforced mode. Untracked passthrough
// instances apply the descriptor's value directly.
func (h *Handle) Define(key string, desc Descriptor) error {
	if h.guard == guardPass {
		h.obj.set(key, desc.Value)
		return nil
	}
	return diag.NewDefineError(h.obj.class, key)
}

// read implements the full-mode read decision logic.
func (e *Engine) read(obj *Object, key string, origin diag.Context) any {
	if rec, ok := e.released[obj.id]; ok {
		e.report(diag.CodeReleasedRead, obj.class, key,
			fmt.Sprintf("read of %q on released instance of %s", key, obj.class),
			origin, rec.at, nil)
		if v, exists := obj.get(key); exists {
			return v
		}
		return kind.Absent
	}

	v, ok := obj.get(key)
	if !ok {
		if !reservedMetaKeys[normKey(key)] {
			e.report(diag.CodeMissingRead, obj.class, key,
				fmt.Sprintf("read of missing property %q on %s", key, obj.class),
				origin, nil, nil)
		}
		return kind.Absent
	}
	return v
}

// write implements the full-mode write decision logic, in order:
// released check, new-property check, type-change check, then the write.
func (e *Engine) write(obj *Object, key string, value any, origin diag.Context) {
	if rec, ok := e.released[obj.id]; ok {
		e.report(diag.CodeReleasedWrite, obj.class, key,
			fmt.Sprintf("write of %q on released instance of %s", key, obj.class),
			origin, rec.at, nil)
		return
	}

	old, exists := obj.get(key)
	if !exists {
		if !e.inSession(obj.id) {
			e.report(diag.CodeUnknownWrite, obj.class, key,
				fmt.Sprintf("write of non-existent property %q on %s", key, obj.class),
				origin, nil, nil)
			return
		}
		obj.set(key, value)
		return
	}

	from, to := kind.Of(old), kind.Of(value)
	if !kind.ValidChange(from, to) && !e.inSession(obj.id) {
		e.report(diag.CodeTypeChangedWrite, obj.class, key,
			fmt.Sprintf("cannot change type of %q on %s from %s to %s", key, obj.class, from, to),
			origin, nil, map[string]string{"from": from.String(), "to": to.String()})
		return
	}

	obj.set(key, value)
}

// writeSealed implements the seal-mode structural guard: no new
// properties, but existing properties may change value (and type) freely.
func (e *Engine) writeSealed(obj *Object, key string, value any, origin diag.Context) {
	if !obj.Has(key) && !e.inSession(obj.id) {
		e.report(diag.CodeUnknownWrite, obj.class, key,
			fmt.Sprintf("write of non-existent property %q on sealed %s", key, obj.class),
			origin, nil, nil)
		return
	}
	obj.set(key, value)
}
