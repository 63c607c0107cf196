package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vigil/internal/diag"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleViolation(id string, seq int64) diag.Violation {
	return diag.Violation{
		ID:      id,
		Code:    diag.CodeMissingRead,
		Class:   "Account",
		Key:     "balance",
		Message: "read of missing property",
		Origin: diag.Context{
			{Function: "main.main", File: "main.go", Line: 42},
			{Function: "runtime.main", File: "proc.go", Line: 250},
		},
		Seq: seq,
	}
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening applies the schema idempotently.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.ListViolations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteAndListRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v := sampleViolation("v-1", 7)
	v.Details = map[string]string{"from": "number", "to": "text"}
	v.Release = diag.Context{{Function: "main.teardown", File: "main.go", Line: 99}}
	require.NoError(t, s.WriteViolation(ctx, v))

	got, err := s.ListViolations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, v, got[0])
}

func TestWriteIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v := sampleViolation("v-1", 1)
	require.NoError(t, s.WriteViolation(ctx, v))

	// Same ID again, even with a different message, is a no-op.
	dup := v
	dup.Message = "changed"
	require.NoError(t, s.WriteViolation(ctx, dup))

	got, err := s.ListViolations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "read of missing property", got[0].Message)
}

func TestListOrderedBySeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Written out of order.
	require.NoError(t, s.WriteViolation(ctx, sampleViolation("v-c", 3)))
	require.NoError(t, s.WriteViolation(ctx, sampleViolation("v-a", 1)))
	require.NoError(t, s.WriteViolation(ctx, sampleViolation("v-b", 2)))

	got, err := s.ListViolations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"v-a", "v-b", "v-c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestListByCode(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	read := sampleViolation("v-1", 1)
	write := sampleViolation("v-2", 2)
	write.Code = diag.CodeUnknownWrite
	require.NoError(t, s.WriteViolation(ctx, read))
	require.NoError(t, s.WriteViolation(ctx, write))

	got, err := s.ListByCode(ctx, diag.CodeUnknownWrite)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v-2", got[0].ID)
}

func TestCountByCode(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, code := range []diag.Code{
		diag.CodeMissingRead,
		diag.CodeMissingRead,
		diag.CodeReleasedWrite,
	} {
		v := sampleViolation("v-"+string(rune('a'+i)), int64(i+1))
		v.Code = code
		require.NoError(t, s.WriteViolation(ctx, v))
	}

	counts, err := s.CountByCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[diag.Code]int64{
		diag.CodeMissingRead:   2,
		diag.CodeReleasedWrite: 1,
	}, counts)
}

func TestEmptyContextAndDetailsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v := diag.Violation{
		ID:      "v-bare",
		Code:    diag.CodeInconsistentShape,
		Message: "bare",
		Seq:     1,
	}
	require.NoError(t, s.WriteViolation(ctx, v))

	got, err := s.ListViolations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Origin)
	assert.Nil(t, got[0].Release)
	assert.Nil(t, got[0].Details)
}

func TestSinkWritesToStore(t *testing.T) {
	s := openTestStore(t)
	sink := NewSink(s)

	sink.Warn(sampleViolation("v-sink", 5))

	got, err := s.ListViolations(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v-sink", got[0].ID)
}
