package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vigil/internal/diag"
)

func accountClass() ClassDef {
	return ClassDef{
		Name: "Account",
		Fields: []Field{
			{Key: "owner", Value: "alice"},
			{Key: "balance", Value: 100},
		},
	}
}

func TestRunCleanScenario(t *testing.T) {
	s := &Scenario{
		Name:        "clean",
		Description: "no violations",
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpNew, Class: "Account", As: "acct"},
			{Op: OpSet, Target: "acct", Key: "balance", Value: 250},
			{Op: OpGet, Target: "acct", Key: "balance"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.Empty(t, result.Violations)
	assert.Empty(t, result.HardErrors)
	require.Len(t, result.Reads, 1)
	assert.Equal(t, ReadEvent{Step: 3, Target: "acct", Key: "balance", Value: "250"}, result.Reads[0])
}

func TestRunReportsViolationsInOrder(t *testing.T) {
	s := &Scenario{
		Name:        "ordered",
		Description: "violation stream order",
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpNew, Class: "Account", As: "acct"},
			{Op: OpGet, Target: "acct", Key: "ghost"},
			{Op: OpSet, Target: "acct", Key: "ghost", Value: 1},
			{Op: OpRelease, Target: "acct"},
			{Op: OpGet, Target: "acct", Key: "owner"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	require.Len(t, result.Violations, 3)
	assert.Equal(t, diag.CodeMissingRead, result.Violations[0].Code)
	assert.Equal(t, diag.CodeUnknownWrite, result.Violations[1].Code)
	assert.Equal(t, diag.CodeReleasedRead, result.Violations[2].Code)

	// Sequential IDs and seq numbers make runs reproducible.
	assert.Equal(t, "v-1", result.Violations[0].ID)
	assert.Equal(t, int64(1), result.Violations[0].Seq)
	assert.Equal(t, "v-3", result.Violations[2].ID)
	assert.Equal(t, int64(3), result.Violations[2].Seq)
}

func TestRunIsDeterministic(t *testing.T) {
	s := &Scenario{
		Name:        "repeat",
		Description: "identical runs",
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpNew, Class: "Account", As: "acct"},
			{Op: OpGet, Target: "acct", Key: "ghost"},
		},
	}

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Violations, second.Violations)
	assert.Equal(t, first.Reads, second.Reads)
}

func TestRunFieldOverrideDivergesShape(t *testing.T) {
	s := &Scenario{
		Name:        "diverge",
		Description: "per-step field override",
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpNew, Class: "Account", As: "a1"},
			{Op: OpNew, Class: "Account", As: "a2", Fields: []Field{
				{Key: "owner", Value: "bob"},
			}},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, diag.CodeInconsistentShape, v.Code)
	assert.Equal(t, "balance", v.Details["keys"])
}

func TestRunConstructThenReconcile(t *testing.T) {
	s := &Scenario{
		Name:        "bypassed",
		Description: "construct without finalize",
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpConstruct, Class: "Account", As: "tmp"},
			{Op: OpReconcile},
			{Op: OpReconcile},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, diag.CodeMissingNew, result.Violations[0].Code)
	assert.Equal(t, "Account", result.Violations[0].Class)
}

func TestRunDisabledModeIsSilent(t *testing.T) {
	s := &Scenario{
		Name:        "disabled",
		Description: "no checks in disabled mode",
		Mode:        "disabled",
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpNew, Class: "Account", As: "acct"},
			{Op: OpGet, Target: "acct", Key: "ghost"},
			{Op: OpSet, Target: "acct", Key: "ghost", Value: 1},
			{Op: OpDelete, Target: "acct", Key: "owner"},
			{Op: OpGet, Target: "acct", Key: "owner"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.Empty(t, result.Violations)
	assert.Empty(t, result.HardErrors)
	require.Len(t, result.Reads, 2)
	assert.Equal(t, "(absent)", result.Reads[0].Value)
	// The delete actually removed the property.
	assert.Equal(t, "(absent)", result.Reads[1].Value)
}

func TestRunHardErrorsAreCollected(t *testing.T) {
	s := &Scenario{
		Name:        "hard",
		Description: "delete and define are hard violations",
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpNew, Class: "Account", As: "acct"},
			{Op: OpDelete, Target: "acct", Key: "owner"},
			{Op: OpDefine, Target: "acct", Key: "owner", Value: "mallory"},
			{Op: OpGet, Target: "acct", Key: "owner"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	require.Len(t, result.HardErrors, 2)
	assert.Equal(t, string(diag.CodeDeleteRejected), result.HardErrors[0].Code)
	assert.Equal(t, 2, result.HardErrors[0].Step)
	assert.Equal(t, string(diag.CodeDefineRejected), result.HardErrors[1].Code)

	// Neither operation disturbed the property.
	require.Len(t, result.Reads, 1)
	assert.Equal(t, "alice", result.Reads[0].Value)
}

func TestRunWarnLimitCapsReports(t *testing.T) {
	s := &Scenario{
		Name:        "capped",
		Description: "warn limit per site",
		WarnLimit:   1,
		Classes:     []ClassDef{accountClass()},
		Steps: []Step{
			{Op: OpNew, Class: "Account", As: "acct"},
			{Op: OpGet, Target: "acct", Key: "ghost"},
			{Op: OpGet, Target: "acct", Key: "ghost"},
			{Op: OpGet, Target: "acct", Key: "ghost"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.Len(t, result.Violations, 1)
}
