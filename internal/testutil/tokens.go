package testutil

import (
	"fmt"
	"sync"
)

// SequentialTokens generates "prefix-1", "prefix-2", ... violation IDs.
//
// Where diag.FixedGenerator replays a predetermined list, SequentialTokens
// produces an unbounded deterministic stream, which is what golden trace
// comparison needs: the same scenario always yields the same IDs.
//
// Implements diag.TokenGenerator.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTokens creates a generator with the given ID prefix.
// An empty prefix defaults to "tok".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "tok"
	}
	return &SequentialTokens{prefix: prefix}
}

// Generate returns the next token in the stream.
func (g *SequentialTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
