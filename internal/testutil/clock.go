package testutil

import (
	"sync"
	"time"
)

// Epoch is the fixed start time used by FakeClock in tests.
var Epoch = time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)

// FakeClock is a wall clock for tests that advances by a fixed tick on
// every read, so timestamps are distinct and reproducible.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeClock struct {
	mu   sync.Mutex
	now  time.Time
	tick time.Duration
}

// NewFakeClock creates a clock starting at Epoch that advances one
// second per Now call.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: Epoch, tick: time.Second}
}

// Now returns the current time and then advances the clock by its tick.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.tick)
	return t
}

// Advance moves the clock forward by d without reading it.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset returns the clock to Epoch.
func (c *FakeClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
