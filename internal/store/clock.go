package store

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing insertion timestamps, even when the
// wall clock repeats or steps back. Values are whole milliseconds so their
// order survives a round trip through Mongo's date type. The guarantee is
// per process: replicas sharing a database each run their own Clock and may
// stamp equal or interleaved values, so readers break ties by id.
type Clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewClock returns a clock backed by time.Now
func NewClock() *Clock { return &Clock{now: time.Now} }

// NewClockFrom returns a clock backed by now
func NewClockFrom(now func() time.Time) *Clock { return &Clock{now: now} }

// Next returns the next timestamp, always after the previous one
func (c *Clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

// Stamp sets created_at on rec unless the caller already provided one
func (c *Clock) Stamp(rec Record) {
	if _, ok := rec[CreatedAtField].(time.Time); ok {
		return
	}
	rec[CreatedAtField] = c.Next()
}
