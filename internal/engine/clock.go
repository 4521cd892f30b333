package engine

import "sync/atomic"

// Clock is a monotonic logical counter. The simulation uses it to number
// bus messages so ids are strictly increasing and independent of wall time.
//
// Clock is safe for concurrent use, although the step loop is its only
// caller in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
