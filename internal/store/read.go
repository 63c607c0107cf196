package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/vigil/internal/diag"
)

// ListViolations returns every recorded violation in seq order.
func (s *Store) ListViolations(ctx context.Context) ([]diag.Violation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, code, class, key, message, origin, release_origin, details
		FROM violations
		ORDER BY seq ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	var out []diag.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, fmt.Errorf("list violations: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	return out, nil
}

// ListByCode returns recorded violations of one category in seq order.
func (s *Store) ListByCode(ctx context.Context, code diag.Code) ([]diag.Violation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, code, class, key, message, origin, release_origin, details
		FROM violations
		WHERE code = ?
		ORDER BY seq ASC, id ASC
	`, string(code))
	if err != nil {
		return nil, fmt.Errorf("list violations by code: %w", err)
	}
	defer rows.Close()

	var out []diag.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, fmt.Errorf("list violations by code: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list violations by code: %w", err)
	}
	return out, nil
}

// CountByCode returns the number of recorded violations per category.
func (s *Store) CountByCode(ctx context.Context) (map[diag.Code]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, COUNT(*) FROM violations GROUP BY code ORDER BY code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("count violations: %w", err)
	}
	defer rows.Close()

	counts := make(map[diag.Code]int64)
	for rows.Next() {
		var code string
		var n int64
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("count violations: %w", err)
		}
		counts[diag.Code(code)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count violations: %w", err)
	}
	return counts, nil
}

func scanViolation(rows *sql.Rows) (diag.Violation, error) {
	var v diag.Violation
	var code, origin, details string
	var release sql.NullString

	if err := rows.Scan(&v.Seq, &v.ID, &code, &v.Class, &v.Key, &v.Message, &origin, &release, &details); err != nil {
		return diag.Violation{}, err
	}
	v.Code = diag.Code(code)

	if err := unmarshalContext(origin, &v.Origin); err != nil {
		return diag.Violation{}, fmt.Errorf("violation %s: %w", v.ID, err)
	}
	if release.Valid && release.String != "" {
		if err := unmarshalContext(release.String, &v.Release); err != nil {
			return diag.Violation{}, fmt.Errorf("violation %s: %w", v.ID, err)
		}
	}
	if details != "" && details != "{}" {
		if err := json.Unmarshal([]byte(details), &v.Details); err != nil {
			return diag.Violation{}, fmt.Errorf("violation %s: unmarshal details: %w", v.ID, err)
		}
	}
	return v, nil
}

func unmarshalContext(data string, c *diag.Context) error {
	if data == "" || data == "[]" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), c); err != nil {
		return fmt.Errorf("unmarshal context: %w", err)
	}
	return nil
}
