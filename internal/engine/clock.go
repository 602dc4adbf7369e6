package engine

import "sync/atomic"

// Counter counts node renders. Engine uses Clock by default; tests may
// supply a resettable counter.
type Counter interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical counter. Every renderSingle call takes the
// next value, so the difference between two readings is the number of node
// renders in between.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
