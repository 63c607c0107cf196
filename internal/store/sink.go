package store

import (
	"context"
	"log/slog"

	"github.com/roach88/vigil/internal/diag"
)

// Sink adapts a Store to the diagnostics sink interface, so an engine
// can tee violations into the audit log:
//
//	eng := engine.New(engine.WithSink(diag.Tee(
//		diag.NewSlogSink(nil),
//		store.NewSink(st),
//	)))
type Sink struct {
	store *Store
}

// NewSink creates a sink over an open store.
func NewSink(s *Store) *Sink {
	return &Sink{store: s}
}

// Warn implements diag.Sink. A failed write is logged and dropped - the
// diagnostics path must never disturb the caller's control flow.
func (s *Sink) Warn(v diag.Violation) {
	if err := s.store.WriteViolation(context.Background(), v); err != nil {
		slog.Error("audit store write failed",
			"error", err,
			"violation_id", v.ID,
			"code", string(v.Code),
		)
	}
}
