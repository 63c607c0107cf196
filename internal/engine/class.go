package engine

// Definition describes an enforceable class: a name and the initialization
// logic that establishes the instance's property set.
//
// Init receives the wrapper, not the raw instance, as the receiving
// context. Any self-reference the constructor hands out is therefore the
// live enforced identity from the first instruction onward.
type Definition interface {
	// ClassName identifies the class. Shape records are keyed by it, so
	// two Definitions sharing a name share a baseline.
	ClassName() string

	// Init establishes the property set on self. Property writes during
	// Init are exempt from new-property and type-change checks.
	Init(self *Handle, args ...any) error
}

// EnforcedBase is the marker a class embeds to opt into enforcement.
//
// Definitions that do not embed it are passed through unwrapped even in
// full mode - they construct, but no session, shape record, or identity
// is created for them.
type EnforcedBase struct{}

// enforceable is the unexported marker method; only EnforcedBase provides
// it, which keeps the Enforceable interface closed.
func (EnforcedBase) enforceable() {}

// Enforceable is satisfied exactly by Definitions embedding EnforcedBase.
type Enforceable interface {
	enforceable()
}

// DefFunc builds a Definition from a name and an init function. It embeds
// EnforcedBase, so the result is always enforceable. Convenient for tests
// and scenarios; applications typically declare struct types instead.
func DefFunc(name string, init func(self *Handle, args ...any) error) Definition {
	return &funcDef{name: name, init: init}
}

type funcDef struct {
	EnforcedBase
	name string
	init func(self *Handle, args ...any) error
}

func (d *funcDef) ClassName() string { return d.name }

func (d *funcDef) Init(self *Handle, args ...any) error {
	if d.init == nil {
		return nil
	}
	return d.init(self, args...)
}
