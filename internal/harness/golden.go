package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/vigil/internal/diag"
)

// TraceSnapshot is the serialized form of a scenario run, compared
// against golden files. Call-origin contexts are omitted: file paths and
// line numbers are machine-dependent, the violation stream is not.
type TraceSnapshot struct {
	Scenario   string           `json:"scenario"`
	Mode       string           `json:"mode"`
	Violations []ViolationEntry `json:"violations"`
	Reads      []ReadEvent      `json:"reads,omitempty"`
	HardErrors []HardEvent      `json:"hard_errors,omitempty"`
}

// ViolationEntry is one soft violation in the snapshot.
type ViolationEntry struct {
	Seq     int64             `json:"seq"`
	ID      string            `json:"id"`
	Code    string            `json:"code"`
	Class   string            `json:"class,omitempty"`
	Key     string            `json:"key,omitempty"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Snapshot converts a run result into its golden-comparable form.
func Snapshot(scenario *Scenario, result *Result) *TraceSnapshot {
	mode := scenario.Mode
	if mode == "" {
		mode = "full"
	}

	violations := make([]ViolationEntry, 0, len(result.Violations))
	for _, v := range result.Violations {
		violations = append(violations, violationEntry(v))
	}

	return &TraceSnapshot{
		Scenario:   scenario.Name,
		Mode:       mode,
		Violations: violations,
		Reads:      result.Reads,
		HardErrors: result.HardErrors,
	}
}

func violationEntry(v diag.Violation) ViolationEntry {
	return ViolationEntry{
		Seq:     v.Seq,
		ID:      v.ID,
		Code:    string(v.Code),
		Class:   v.Class,
		Key:     v.Key,
		Message: v.Message,
		Details: v.Details,
	}
}

// MarshalSnapshot renders the snapshot as stable, indented JSON.
// HTML escaping is off so messages appear in goldens as written.
func MarshalSnapshot(s *TraceSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// Regenerate goldens after an intentional behavior change with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	data, err := MarshalSnapshot(Snapshot(scenario, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
