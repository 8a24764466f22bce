package ecs

import "time"

// Clock is a monotonic time source measured from an arbitrary origin.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the process monotonic clock relative to its creation.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Not safe for concurrent use.
type ManualClock struct {
	now time.Duration
}

func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Set moves the clock to t. Moving backwards is ignored to keep the clock monotonic.
func (c *ManualClock) Set(t time.Duration) {
	if t > c.now {
		c.now = t
	}
}

func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}
