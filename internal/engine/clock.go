package engine

import "sync/atomic"

// Clock is a monotonic logical clock. Each pass takes the next seq.
//
// Clock is safe for concurrent use, though a Runner only calls it from the
// goroutine running the pass.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next seq is start+1.
// Used to continue numbering after the passes already in a log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last seq handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
