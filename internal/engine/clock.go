package engine

import "sync/atomic"

// Clock is a monotonic logical clock for stamping persisted updates.
//
// Every snapshot save is stamped with a strictly increasing seq from
// this clock, so the storage update log has a deterministic order that
// does not depend on wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though each handler normally owns its clock exclusively.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when reopening a session's storage to resume after the last
// persisted update.
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
