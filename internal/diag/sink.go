package diag

import (
	"log/slog"
	"sync"
)

// Sink receives soft violations. Implementations must tolerate being
// called from whatever goroutine performs the offending operation; the
// engine itself is single-threaded but makes no promise about callers.
type Sink interface {
	Warn(v Violation)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(v Violation)

// Warn implements Sink.
func (f SinkFunc) Warn(v Violation) { f(v) }

// SlogSink is the default sink: it writes each violation at warn level
// to a structured logger with the call-origin context attached.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink over the given logger.
// Passing nil uses slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Warn implements Sink.
func (s *SlogSink) Warn(v Violation) {
	attrs := []any{
		"violation_id", v.ID,
		"code", string(v.Code),
		"seq", v.Seq,
	}
	if v.Class != "" {
		attrs = append(attrs, "class", v.Class)
	}
	if v.Key != "" {
		attrs = append(attrs, "key", v.Key)
	}
	if len(v.Origin) > 0 {
		attrs = append(attrs, "origin", v.Origin.String())
	}
	if len(v.Release) > 0 {
		attrs = append(attrs, "released_at", v.Release.String())
	}
	for k, val := range v.Details {
		attrs = append(attrs, k, val)
	}
	s.logger.Warn(v.Message, attrs...)
}

// Recorder collects violations in order for tests and the harness.
//
// Thread-safe: guarded by an internal mutex.
type Recorder struct {
	mu         sync.Mutex
	violations []Violation
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Warn implements Sink.
func (r *Recorder) Warn(v Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, v)
}

// All returns a copy of the recorded violations in report order.
func (r *Recorder) All() []Violation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// Codes returns just the violation codes in report order.
func (r *Recorder) Codes() []Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := make([]Code, len(r.violations))
	for i, v := range r.violations {
		codes[i] = v.Code
	}
	return codes
}

// Len returns the number of recorded violations.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.violations)
}

// Reset discards all recorded violations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = nil
}

// Tee fans a violation out to every given sink, in order.
// Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(v Violation) {
		for _, s := range sinks {
			if s != nil {
				s.Warn(v)
			}
		}
	})
}
