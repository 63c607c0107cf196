package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vigil/internal/engine"
)

// Scenario is a declarative enforcement test case.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Mode is the enforcement mode: full, seal or disabled.
	// Empty defaults to full.
	Mode string `yaml:"mode,omitempty"`

	// WarnLimit caps reports per (code, class, key). 0 reports everything.
	WarnLimit int `yaml:"warn_limit,omitempty"`

	// Classes declares the constructible classes and their field sets.
	Classes []ClassDef `yaml:"classes"`

	// Steps is the operation sequence to drive against the engine.
	Steps []Step `yaml:"steps"`
}

// ClassDef declares a class: a name and an ordered field list the
// constructor establishes.
type ClassDef struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// Field is one constructor-established property. Fields are ordered so
// the property insertion order, and with it Keys(), is deterministic.
type Field struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Step is one operation in the scenario flow.
type Step struct {
	// Op selects the operation.
	Op string `yaml:"op"`

	// Class names the class to construct (new, construct).
	Class string `yaml:"class,omitempty"`

	// As binds the constructed handle to a scenario variable (new,
	// construct).
	As string `yaml:"as,omitempty"`

	// Fields overrides the class's declared field list for this
	// construction, used to provoke shape divergence (new, construct).
	Fields []Field `yaml:"fields,omitempty"`

	// Target names the variable to operate on (set, get, delete, define,
	// release).
	Target string `yaml:"target,omitempty"`

	// Key is the property name (set, get, delete, define).
	Key string `yaml:"key,omitempty"`

	// Value is the value to write (set, define).
	Value any `yaml:"value,omitempty"`
}

// Step operations.
const (
	OpNew       = "new"
	OpConstruct = "construct"
	OpSet       = "set"
	OpGet       = "get"
	OpDelete    = "delete"
	OpDefine    = "define"
	OpRelease   = "release"
	OpReconcile = "reconcile"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently skipping a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Mode != "" {
		if _, err := engine.ParseMode(s.Mode); err != nil {
			return err
		}
	}
	if s.WarnLimit < 0 {
		return fmt.Errorf("warn_limit must be non-negative")
	}
	if len(s.Classes) == 0 {
		return fmt.Errorf("classes list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	classes := make(map[string]bool, len(s.Classes))
	for i, c := range s.Classes {
		if c.Name == "" {
			return fmt.Errorf("classes[%d]: name is required", i)
		}
		if classes[c.Name] {
			return fmt.Errorf("classes[%d]: duplicate class %q", i, c.Name)
		}
		classes[c.Name] = true
		for j, f := range c.Fields {
			if f.Key == "" {
				return fmt.Errorf("classes[%d].fields[%d]: key is required", i, j)
			}
		}
	}

	vars := make(map[string]bool)
	for i, step := range s.Steps {
		if err := validateStep(i, &step, classes, vars); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step, classes, vars map[string]bool) error {
	switch step.Op {
	case OpNew, OpConstruct:
		if step.Class == "" {
			return fmt.Errorf("steps[%d]: class is required for %s", index, step.Op)
		}
		if !classes[step.Class] {
			return fmt.Errorf("steps[%d]: undeclared class %q", index, step.Class)
		}
		if step.As == "" {
			return fmt.Errorf("steps[%d]: as is required for %s", index, step.Op)
		}
		vars[step.As] = true
	case OpSet, OpDefine:
		if step.Key == "" {
			return fmt.Errorf("steps[%d]: key is required for %s", index, step.Op)
		}
		if !vars[step.Target] {
			return fmt.Errorf("steps[%d]: target %q not bound by an earlier step", index, step.Target)
		}
	case OpGet, OpDelete:
		if step.Key == "" {
			return fmt.Errorf("steps[%d]: key is required for %s", index, step.Op)
		}
		if !vars[step.Target] {
			return fmt.Errorf("steps[%d]: target %q not bound by an earlier step", index, step.Target)
		}
	case OpRelease:
		if !vars[step.Target] {
			return fmt.Errorf("steps[%d]: target %q not bound by an earlier step", index, step.Target)
		}
	case OpReconcile:
		// No operands.
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}
