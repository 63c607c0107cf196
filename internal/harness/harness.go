package harness

import (
	"fmt"

	"github.com/roach88/vigil/internal/diag"
	"github.com/roach88/vigil/internal/engine"
	"github.com/roach88/vigil/internal/kind"
	"github.com/roach88/vigil/internal/testutil"
)

// ReadEvent records the observed value of one get step.
type ReadEvent struct {
	Step   int    `json:"step"`
	Target string `json:"target"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// HardEvent records a hard violation returned by a step.
type HardEvent struct {
	Step    int    `json:"step"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result holds everything a scenario run observed.
type Result struct {
	// Violations are the soft violations in report order.
	Violations []diag.Violation

	// Reads are the values observed by get steps, in step order.
	Reads []ReadEvent

	// HardErrors are the hard violations returned by steps, in step order.
	HardErrors []HardEvent
}

// Run executes a scenario against a fresh engine.
//
// Each run is fully isolated: its own engine, a recording sink, and
// sequential violation IDs. Step numbers in the result are 1-based
// positions in the scenario's step list.
func Run(scenario *Scenario) (*Result, error) {
	mode := engine.ModeFull
	if scenario.Mode != "" {
		m, err := engine.ParseMode(scenario.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	recorder := diag.NewRecorder()
	eng := engine.New(
		engine.WithMode(mode),
		engine.WithSink(recorder),
		engine.WithTokenGenerator(testutil.NewSequentialTokens("v")),
		engine.WithWarnLimit(scenario.WarnLimit),
	)

	defs := make(map[string]*ClassDef, len(scenario.Classes))
	for i := range scenario.Classes {
		defs[scenario.Classes[i].Name] = &scenario.Classes[i]
	}

	result := &Result{}
	vars := make(map[string]*engine.Handle)

	for i, step := range scenario.Steps {
		stepNo := i + 1
		if err := runStep(eng, defs, vars, stepNo, &step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", stepNo, step.Op, err)
		}
	}

	result.Violations = recorder.All()
	return result, nil
}

func runStep(eng *engine.Engine, defs map[string]*ClassDef, vars map[string]*engine.Handle, stepNo int, step *Step, result *Result) error {
	switch step.Op {
	case OpNew, OpConstruct:
		fields := defs[step.Class].Fields
		if step.Fields != nil {
			fields = step.Fields
		}
		def := classDefinition(step.Class, fields)

		var h *engine.Handle
		var err error
		if step.Op == OpNew {
			h, err = eng.New(def)
		} else {
			h, err = eng.Construct(def)
		}
		if err != nil {
			return err
		}
		vars[step.As] = h

	case OpSet:
		vars[step.Target].Set(step.Key, step.Value)

	case OpGet:
		v := vars[step.Target].Get(step.Key)
		result.Reads = append(result.Reads, ReadEvent{
			Step:   stepNo,
			Target: step.Target,
			Key:    step.Key,
			Value:  renderValue(v),
		})

	case OpDelete:
		if err := vars[step.Target].Delete(step.Key); err != nil {
			result.HardErrors = append(result.HardErrors, HardEvent{
				Step:    stepNo,
				Code:    string(diag.HardCodeOf(err)),
				Message: err.Error(),
			})
		}

	case OpDefine:
		err := vars[step.Target].Define(step.Key, engine.Descriptor{
			Value:      step.Value,
			Writable:   true,
			Enumerable: true,
		})
		if err != nil {
			result.HardErrors = append(result.HardErrors, HardEvent{
				Step:    stepNo,
				Code:    string(diag.HardCodeOf(err)),
				Message: err.Error(),
			})
		}

	case OpRelease:
		eng.Release(vars[step.Target])

	case OpReconcile:
		eng.Reconcile()

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// classDefinition builds an enforceable definition whose constructor
// establishes the given fields in order.
func classDefinition(name string, fields []Field) engine.Definition {
	return engine.DefFunc(name, func(self *engine.Handle, args ...any) error {
		for _, f := range fields {
			self.Set(f.Key, f.Value)
		}
		return nil
	})
}

// renderValue formats an observed value for the trace. Absent and null
// get distinct spellings so traces distinguish them.
func renderValue(v any) string {
	switch {
	case kind.IsAbsent(v):
		return "(absent)"
	case v == nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
