package interview

import (
	"sync"
	"time"
)

// Countdown is the per-question timer of a timed interview. Each Reset
// starts a fresh budget and invalidates the previous run, so an expiry
// callback never fires for a question that was already left.
type Countdown struct {
	mu        sync.Mutex
	budget    time.Duration
	tick      time.Duration
	remaining time.Duration
	gen       uint64
	done      chan struct{}
}

// NewCountdown creates a stopped countdown. tick defaults to one second.
func NewCountdown(budget, tick time.Duration) *Countdown {
	if tick <= 0 {
		tick = time.Second
	}
	return &Countdown{budget: budget, tick: tick}
}

// Reset restarts the budget; onExpire runs once, outside the countdown's
// lock, when it reaches zero.
func (c *Countdown) Reset(onExpire func()) {
	c.mu.Lock()
	c.stopLocked()
	c.remaining = c.budget
	done := make(chan struct{})
	c.done = done
	gen := c.gen
	c.mu.Unlock()

	go c.run(gen, done, onExpire)
}

// Stop cancels the running countdown, if any.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.remaining = 0
}

// Remaining returns the time left for the current question.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// RemainingSeconds rounds Remaining up to whole seconds.
func (c *Countdown) RemainingSeconds() int {
	r := c.Remaining()
	return int((r + time.Second - 1) / time.Second)
}

// Running reports whether a countdown is in flight.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}

// stopLocked ends the current run. Bumping gen also voids a tick that is
// already waiting on the lock.
func (c *Countdown) stopLocked() {
	c.gen++
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}

func (c *Countdown) run(gen uint64, done chan struct{}, onExpire func()) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if gen != c.gen {
				c.mu.Unlock()
				return
			}
			c.remaining -= c.tick
			expired := c.remaining <= 0
			if expired {
				c.remaining = 0
				c.stopLocked()
			}
			c.mu.Unlock()

			if expired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}
