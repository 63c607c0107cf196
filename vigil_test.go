package vigil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vigil"
	"github.com/roach88/vigil/internal/diag"
)

// Account is an enforced class declared the way applications declare them.
type Account struct{ vigil.EnforcedBase }

func (Account) ClassName() string { return "Account" }

func (Account) Init(self *vigil.Handle, args ...any) error {
	self.Set("owner", args[0])
	self.Set("balance", args[1])
	return nil
}

func TestPublicSurface_EndToEnd(t *testing.T) {
	var got []vigil.Violation
	eng := vigil.NewEngine(vigil.WithTokenGenerator(diag.NewFixedGenerator()))
	require.NoError(t, vigil.SetWarningCallback(eng, func(v vigil.Violation) {
		got = append(got, v)
	}))

	acct, err := eng.New(Account{}, "ada", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "balance"}, acct.Keys())

	acct.Set("balance", 250)
	assert.Equal(t, 250, acct.Get("balance"))

	acct.Set("balance", "lots") // type change: reported, discarded
	assert.Equal(t, 250, acct.Get("balance"))

	err = acct.Delete("owner")
	require.Error(t, err)
	assert.True(t, vigil.IsHardViolation(err))

	eng.Release(acct)
	assert.True(t, eng.WasReleased(acct))
	acct.Get("owner") // use after release: reported

	require.Len(t, got, 2)
	assert.Equal(t, diag.CodeTypeChangedWrite, got[0].Code)
	assert.Equal(t, diag.CodeReleasedRead, got[1].Code)
	assert.NotEmpty(t, got[1].Release)
}

func TestPublicSurface_AbsentMarker(t *testing.T) {
	eng := vigil.NewEngine(vigil.WithSink(diag.NewRecorder()))
	acct, err := eng.New(Account{}, "ada", 1)
	require.NoError(t, err)

	v := acct.Get("missing")
	assert.True(t, vigil.IsAbsent(v))
	assert.Equal(t, vigil.Absent, v)
}

func TestPublicSurface_SetWarningCallbackNil(t *testing.T) {
	eng := vigil.NewEngine()
	err := vigil.SetWarningCallback(eng, nil)
	require.Error(t, err)
	assert.True(t, vigil.IsHardViolation(err))
}

func TestPublicSurface_ParseMode(t *testing.T) {
	m, err := vigil.ParseMode("seal")
	require.NoError(t, err)
	assert.Equal(t, vigil.ModeSeal, m)

	_, err = vigil.ParseMode("paranoid")
	require.Error(t, err)
	assert.True(t, vigil.IsHardViolation(err))
}

func TestPublicSurface_DefFunc(t *testing.T) {
	eng := vigil.NewEngine(vigil.WithSink(diag.NewRecorder()))
	def := vigil.DefFunc("Pair", func(self *vigil.Handle, args ...any) error {
		self.Set("a", args[0])
		self.Set("b", args[1])
		return nil
	})

	h, err := eng.New(def, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, h.Keys())
}
