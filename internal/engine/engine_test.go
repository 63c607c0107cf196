package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vigil/internal/diag"
	"github.com/roach88/vigil/internal/kind"
)

func abcDef(name string, keys ...string) Definition {
	return DefFunc(name, func(self *Handle, args ...any) error {
		for i, k := range keys {
			self.Set(k, i)
		}
		return nil
	})
}

func TestShape_FirstInstanceDefinesBaseline(t *testing.T) {
	e, rec := newTestEngine()

	_, err := e.New(abcDef("Rec", "a", "b", "c"))
	require.NoError(t, err)

	baseline, ok := e.Baseline("Rec")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, baseline)
	assert.Equal(t, 0, rec.Len())
}

func TestShape_DivergentInstanceReportsAllDifferingKeys(t *testing.T) {
	e, rec := newTestEngine()

	_, err := e.New(abcDef("Rec", "a", "b", "c"))
	require.NoError(t, err)
	_, err = e.New(abcDef("Rec", "a", "b", "d"))
	require.NoError(t, err)

	require.Equal(t, 1, rec.Len())
	v := rec.All()[0]
	assert.Equal(t, diag.CodeInconsistentShape, v.Code)
	assert.Equal(t, "Rec", v.Class)
	assert.Equal(t, "c,d", v.Details["keys"])

	// The baseline is never updated after the first instance.
	baseline, _ := e.Baseline("Rec")
	assert.Equal(t, []string{"a", "b", "c"}, baseline)
}

func TestShape_EveryDivergentConstructionReports(t *testing.T) {
	e, rec := newTestEngine()

	_, err := e.New(abcDef("Rec", "a"))
	require.NoError(t, err)
	_, err = e.New(abcDef("Rec", "b"))
	require.NoError(t, err)
	_, err = e.New(abcDef("Rec", "b"))
	require.NoError(t, err)

	// Not deduplicated across calls: each divergent instance reports.
	assert.Equal(t, []diag.Code{diag.CodeInconsistentShape, diag.CodeInconsistentShape}, rec.Codes())
}

func TestShape_ConsistentInstancesStaySilent(t *testing.T) {
	e, rec := newTestEngine()

	for i := 0; i < 3; i++ {
		_, err := e.New(abcDef("Rec", "a", "b"))
		require.NoError(t, err)
	}
	assert.Equal(t, 0, rec.Len())
}

func TestRelease_ReadAndWriteReportIndefinitely(t *testing.T) {
	e, rec := newTestEngine()
	h := newPoint(t, e)

	assert.False(t, e.WasReleased(h))
	e.Release(h)
	assert.True(t, e.WasReleased(h))

	// Reads still return the underlying value, but report.
	assert.Equal(t, 1, h.Get("x"))
	// Writes are discarded.
	h.Set("x", 99)
	assert.Equal(t, 1, h.Get("x"))
	// Reads of missing keys report the release, not a missing read.
	assert.True(t, kind.IsAbsent(h.Get("nope")))

	codes := rec.Codes()
	require.Equal(t, []diag.Code{
		diag.CodeReleasedRead,
		diag.CodeReleasedWrite,
		diag.CodeReleasedRead,
		diag.CodeReleasedRead,
	}, codes)

	// Every report carries the original release context.
	for _, v := range rec.All() {
		assert.NotEmpty(t, v.Release, v.Code)
		assert.Contains(t, v.Release.String(), "TestRelease_ReadAndWriteReportIndefinitely")
		assert.NotEmpty(t, v.Origin)
	}
}

func TestRelease_SecondReleaseKeepsOriginalContext(t *testing.T) {
	e, rec := newTestEngine()
	h := newPoint(t, e)

	e.Release(h)
	first := e.released[h.ID()].at
	e.Release(h) // idempotent: released stays released
	assert.Equal(t, first, e.released[h.ID()].at)

	h.Get("x")
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, first, rec.All()[0].Release)
}

func TestRelease_NilAndUntrackedAreNoOps(t *testing.T) {
	e, rec := newTestEngine()

	e.Release(nil)
	assert.False(t, e.WasReleased(nil))

	require.NoError(t, e.SetMode(ModeDisabled))
	h, err := e.New(pointDef{}, 1, 2)
	require.NoError(t, err)
	e.Release(h)
	assert.False(t, e.WasReleased(h))
	assert.Equal(t, 0, rec.Len())
}

func TestWasReleased_EmitsNoDiagnostic(t *testing.T) {
	e, rec := newTestEngine()
	h := newPoint(t, e)

	e.Release(h)
	for i := 0; i < 3; i++ {
		assert.True(t, e.WasReleased(h))
	}
	assert.Equal(t, 0, rec.Len())
}

func TestModeChange_ExistingHandlesKeepTheirBehavior(t *testing.T) {
	e, rec := newTestEngine()
	full := newPoint(t, e)

	require.NoError(t, e.SetMode(ModeSeal))
	sealed, err := e.New(pointDef{}, 3, 4)
	require.NoError(t, err)

	// The earlier handle still enforces types.
	full.Set("x", "text")
	assert.Equal(t, 1, full.Get("x"))
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, diag.CodeTypeChangedWrite, rec.All()[0].Code)

	// The sealed handle does not.
	sealed.Set("x", "text")
	assert.Equal(t, "text", sealed.Get("x"))
	assert.Equal(t, 1, rec.Len())
}

func TestShapeDiff(t *testing.T) {
	assert.Nil(t, shapeDiff([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, []string{"c", "d"}, shapeDiff([]string{"a", "c"}, []string{"a", "d"}))
	assert.Equal(t, []string{"a"}, shapeDiff([]string{"a"}, nil))
}
