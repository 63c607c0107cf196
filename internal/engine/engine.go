package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/vigil/internal/diag"
)

// session is the transient raw<->wrapper association active between
// "instance created" and "constructor finished". While a session is open,
// new-property and type-change checks are suppressed for that identity.
type session struct {
	obj    *Object
	handle *Handle
}

// releaseRecord is the ledger entry for a released identity: the class
// name and the call site of the Release call. Identity tokens key the
// ledger, so entries never keep released objects alive.
type releaseRecord struct {
	class string
	at    diag.Context
}

// warnKey identifies a (code, class, key) triple for warn limiting.
type warnKey struct {
	code  diag.Code
	class string
	key   string
}

// Engine owns the enforcement registries: construction sessions, class
// shape baselines, the release ledger, and warn counters.
//
// All mutation happens synchronously within the caller's turn; the engine
// holds no locks and performs no blocking operation. Construct isolated
// Engine values for isolated tests.
type Engine struct {
	mode   Mode
	sink   diag.Sink
	tokens diag.TokenGenerator
	ids    *Clock // identity tokens for enforced instances
	seq    *Clock // violation sequence numbers

	// warnLimit caps reports per (code, class, key); 0 means unlimited.
	warnLimit  int
	warnCounts map[warnKey]int

	sessions map[int64]*session
	shapes   map[string][]string
	released map[int64]releaseRecord
}

// Option configures an Engine.
type Option func(*Engine)

// WithMode sets the initial enforcement mode. Default: ModeFull.
func WithMode(m Mode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithSink sets the diagnostics sink. Default: slog warn-level sink.
func WithSink(s diag.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithTokenGenerator sets the violation ID generator.
// Default: diag.UUIDv7Generator. Tests use diag.NewFixedGenerator.
func WithTokenGenerator(g diag.TokenGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.tokens = g
		}
	}
}

// WithWarnLimit caps reports per (code, class, key) triple. 0 (the
// default) reports every occurrence, which the enforcement contract
// requires; set a limit only to keep pathological loops readable.
func WithWarnLimit(n int) Option {
	return func(e *Engine) { e.warnLimit = n }
}

// New creates an Engine in full-enforcement mode with the default slog
// sink and UUIDv7 violation IDs.
func New(opts ...Option) *Engine {
	e := &Engine{
		mode:       ModeFull,
		sink:       diag.NewSlogSink(nil),
		tokens:     diag.UUIDv7Generator{},
		ids:        NewClock(),
		seq:        NewClock(),
		warnCounts: make(map[warnKey]int),
		sessions:   make(map[int64]*session),
		shapes:     make(map[string][]string),
		released:   make(map[int64]releaseRecord),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the current enforcement mode.
func (e *Engine) Mode() Mode { return e.mode }

// SetMode switches the enforcement level for subsequent constructions.
// Rejects anything but the three enumerated modes with a hard
// configuration error, regardless of the current mode.
func (e *Engine) SetMode(m Mode) error {
	if !m.valid() {
		return &diag.HardError{
			Code:    diag.CodeInvalidMode,
			Message: fmt.Sprintf("unknown mode %d: must be one of full, seal, disabled", int(m)),
		}
	}
	e.mode = m
	slog.Debug("enforcement mode changed", "mode", m.String())
	return nil
}

// SetSink replaces the diagnostics sink. A nil sink is a hard
// configuration error, regardless of the current mode.
func (e *Engine) SetSink(s diag.Sink) error {
	if s == nil {
		return &diag.HardError{
			Code:    diag.CodeInvalidCallback,
			Message: "warning sink must be non-nil",
		}
	}
	e.sink = s
	return nil
}

// Sink returns the current diagnostics sink.
func (e *Engine) Sink() diag.Sink { return e.sink }

// Release transfers the instance's identity into the release ledger,
// capturing the release call site. Revocation is permanent: a second
// Release is a no-op that keeps the original record, and every subsequent
// read or write on the handle is reported with both the release context
// and the access context.
//
// Instances with no tracked identity (disabled-mode constructions and
// unenforced passthroughs) are ignored: no report, no error.
func (e *Engine) Release(h *Handle) {
	if h == nil || h.obj == nil || h.obj.id == 0 {
		return
	}
	id := h.obj.id
	if _, ok := e.released[id]; ok {
		return
	}
	e.released[id] = releaseRecord{
		class: h.obj.class,
		at:    diag.Capture(1),
	}
}

// WasReleased reports whether the instance's identity is in the release
// ledger. Pure query: emits no diagnostic.
func (e *Engine) WasReleased(h *Handle) bool {
	if h == nil || h.obj == nil || h.obj.id == 0 {
		return false
	}
	_, ok := e.released[h.obj.id]
	return ok
}

// Reconcile is the deliberate end-of-batch consistency step. Any
// construction session still open indicates a class was instantiated
// without going through New, which disables enforcement for that
// instance. Each affected class is reported once, then the stale
// sessions are cleared so the warning does not repeat.
//
// Safe to call with zero open sessions.
func (e *Engine) Reconcile() {
	if len(e.sessions) == 0 {
		return
	}
	origin := diag.Capture(1)

	classes := make(map[string]bool)
	for _, s := range e.sessions {
		classes[s.obj.class] = true
	}
	names := make([]string, 0, len(classes))
	for c := range classes {
		names = append(names, c)
	}
	sort.Strings(names)

	for _, class := range names {
		e.report(diag.CodeMissingNew, class, "",
			fmt.Sprintf("class %s was instantiated without New(); enforcement is disabled for that instance", class),
			origin, nil, nil)
	}

	e.sessions = make(map[int64]*session)
	slog.Debug("stale construction sessions cleared", "classes", strings.Join(names, ","))
}

// OpenSessions returns the number of construction sessions currently
// open. Used for testing and introspection.
func (e *Engine) OpenSessions() int {
	return len(e.sessions)
}

// Baseline returns the recorded shape baseline for a class, if any.
// Used for testing and introspection.
func (e *Engine) Baseline(class string) ([]string, bool) {
	b, ok := e.shapes[class]
	if !ok {
		return nil, false
	}
	out := make([]string, len(b))
	copy(out, b)
	return out, true
}

// inSession reports whether the identity has an active construction session.
func (e *Engine) inSession(id int64) bool {
	_, ok := e.sessions[id]
	return ok
}

// clearSessions unwinds every in-flight construction session. Called when
// any constructor fails: an error can interrupt multiple cooperating
// constructions, and leaking a suppressed session would silently disable
// enforcement for its instance.
func (e *Engine) clearSessions() {
	e.sessions = make(map[int64]*session)
}

// verifyShape compares a finalized instance's property set against the
// class baseline. The first successfully constructed instance defines the
// baseline; it is never updated afterwards - it is the baseline, not a
// rolling union. Every divergent instance is reported, each naming all
// differing keys.
func (e *Engine) verifyShape(obj *Object, origin diag.Context) {
	baseline, ok := e.shapes[obj.class]
	if !ok {
		e.shapes[obj.class] = obj.Keys()
		return
	}

	diff := shapeDiff(baseline, obj.keys)
	if len(diff) == 0 {
		return
	}

	joined := strings.Join(diff, ", ")
	e.report(diag.CodeInconsistentShape, obj.class, "",
		fmt.Sprintf("instance of %s has inconsistent properties: %s", obj.class, joined),
		origin, nil, map[string]string{"keys": strings.Join(diff, ",")})
}

// shapeDiff returns the symmetric difference of two key sets, sorted.
func shapeDiff(a, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, k := range a {
		inA[k] = true
	}
	inB := make(map[string]bool, len(b))
	for _, k := range b {
		inB[k] = true
	}

	var diff []string
	for _, k := range a {
		if !inB[k] {
			diff = append(diff, k)
		}
	}
	for _, k := range b {
		if !inA[k] {
			diff = append(diff, k)
		}
	}
	sort.Strings(diff)
	return diff
}

// report delivers a soft violation to the sink, stamped with a fresh ID
// and sequence number. Honors the warn limit when one is set.
func (e *Engine) report(code diag.Code, class, key, msg string, origin, release diag.Context, details map[string]string) {
	if e.warnLimit > 0 {
		k := warnKey{code: code, class: class, key: key}
		e.warnCounts[k]++
		if e.warnCounts[k] > e.warnLimit {
			return
		}
	}

	e.sink.Warn(diag.Violation{
		ID:      e.tokens.Generate(),
		Code:    code,
		Class:   class,
		Key:     key,
		Message: msg,
		Origin:  origin,
		Release: release,
		Seq:     e.seq.Next(),
		Details: details,
	})
}
