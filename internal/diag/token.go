package diag

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces unique violation IDs.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 violation IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs sort by
// report time - convenient when correlating the log stream with the audit
// store.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined IDs for deterministic tests and
// golden trace comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order,
// then falls back to "fixed-N" once the supplied tokens are exhausted.
// The fallback (rather than a panic) lets scenarios trigger an unknown
// number of violations without pre-counting them.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx < len(g.tokens) {
		token := g.tokens[g.idx]
		g.idx++
		return token
	}
	g.idx++
	return fmt.Sprintf("fixed-%d", g.idx)
}
