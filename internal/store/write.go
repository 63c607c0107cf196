package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/vigil/internal/diag"
)

// WriteViolation appends a violation to the audit log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-recording an
// already-stored violation is silently ignored.
func (s *Store) WriteViolation(ctx context.Context, v diag.Violation) error {
	originJSON, err := marshalContext(v.Origin)
	if err != nil {
		return fmt.Errorf("write violation: %w", err)
	}

	var releaseJSON any // NULL unless the violation carries a release site
	if len(v.Release) > 0 {
		rj, err := marshalContext(v.Release)
		if err != nil {
			return fmt.Errorf("write violation: %w", err)
		}
		releaseJSON = rj
	}

	detailsJSON, err := marshalDetails(v.Details)
	if err != nil {
		return fmt.Errorf("write violation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO violations
		(seq, id, code, class, key, message, origin, release_origin, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		v.Seq,
		v.ID,
		string(v.Code),
		v.Class,
		v.Key,
		v.Message,
		originJSON,
		releaseJSON,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("write violation: %w", err)
	}

	return nil
}

// marshalContext serializes a call-origin context to JSON TEXT.
func marshalContext(c diag.Context) (string, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}
	return string(data), nil
}

// marshalDetails serializes the details map to JSON TEXT.
// Go's json.Marshal sorts map keys, so output is deterministic.
func marshalDetails(d map[string]string) (string, error) {
	if len(d) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal details: %w", err)
	}
	return string(data), nil
}
