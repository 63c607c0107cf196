package engine

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Object is the raw instance behind a Handle: an insertion-ordered
// property bag plus the identity token the engine tracks it by.
//
// Property names are NFC-normalized on the way in, so composed and
// decomposed spellings of the same name address the same property and
// cannot masquerade as distinct keys in shape comparison.
//
// Objects are only ever mutated through their Handle (or by the engine
// during construction); nothing here validates.
type Object struct {
	id    int64
	class string
	props map[string]any
	keys  []string // insertion order, for deterministic shape reporting
}

// normKey normalizes a property name to NFC.
func normKey(key string) string {
	return norm.NFC.String(key)
}

// newObject creates an empty raw instance for the given class.
// id 0 means "not tracked" (disabled mode and unenforced passthroughs).
func newObject(id int64, class string) *Object {
	return &Object{
		id:    id,
		class: class,
		props: make(map[string]any),
	}
}

// ID returns the identity token, or 0 for untracked instances.
func (o *Object) ID() int64 { return o.id }

// Class returns the class name the instance was constructed under.
func (o *Object) Class() string { return o.class }

// Has reports whether the (normalized) property exists.
func (o *Object) Has(key string) bool {
	_, ok := o.props[normKey(key)]
	return ok
}

// get returns the stored value and whether the property exists.
func (o *Object) get(key string) (any, bool) {
	v, ok := o.props[normKey(key)]
	return v, ok
}

// set stores a value, recording insertion order on first write.
func (o *Object) set(key string, value any) {
	k := normKey(key)
	if _, ok := o.props[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.props[k] = value
}

// delete removes a property. Only reachable through untracked
// passthrough handles; enforced handles reject deletion outright.
func (o *Object) delete(key string) {
	k := normKey(key)
	if _, ok := o.props[k]; !ok {
		return
	}
	delete(o.props, k)
	o.keys = slices.DeleteFunc(o.keys, func(s string) bool { return s == k })
}

// Keys returns the property names in insertion order.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.props) }

// Descriptor is a structural property descriptor, the analog of the
// define-property surface. It exists only to be rejected: structural
// redefinition would bypass the write and delete checks.
type Descriptor struct {
	Value      any
	Writable   bool
	Enumerable bool
}
