package engine

import "sync/atomic"

// Clock is a monotonic logical clock.
//
// The engine runs two instances: one allocating identity tokens for
// enforced instances, one stamping violations with sequence numbers.
// Ordering always uses these counters, never wall-clock timestamps, so
// audit listings are deterministic.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the engine's single-threaded model means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific value.
// Used by tests that need predetermined identity tokens.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next value and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
