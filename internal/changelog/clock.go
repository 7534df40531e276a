package changelog

import "sync/atomic"

// Clock is the monotonic logical clock that stamps change-log entries.
//
// Every entry gets a strictly increasing seq from this clock, which
// makes ordering explicit and replay deterministic - no wall-clock
// races. Timestamps on entries exist for retention only, never for
// ordering.
//
// Thread-safety: atomic operations make Clock safe for concurrent use,
// though the single-writer append discipline means one goroutine calls
// Next in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific sequence number.
// Used when loading a persisted log so new entries continue the series.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the latest issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
