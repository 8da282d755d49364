package core

import "time"

// Clock measures how long the run loop has been idling. The zero value is
// stopped.
type Clock struct {
	start   time.Time
	elapsed time.Duration
	ticks   uint64
}

// Start resets the clock.
func (c *Clock) Start() {
	c.start = time.Now()
	c.elapsed = 0
	c.ticks = 0
}

// Tick counts one loop iteration and refreshes the elapsed time. Has no
// effect on a stopped clock.
func (c *Clock) Tick() {
	if c.start.IsZero() {
		return
	}
	c.ticks++
	c.elapsed = time.Since(c.start)
}

// Stop freezes the elapsed time.
func (c *Clock) Stop() {
	if !c.start.IsZero() {
		c.elapsed = time.Since(c.start)
	}
	c.start = time.Time{}
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

func (c *Clock) Ticks() uint64 {
	return c.ticks
}
