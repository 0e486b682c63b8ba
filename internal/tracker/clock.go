package tracker

import (
	"sync"
	"time"
)

// Clock provides the current time. Balances and progress are always computed
// against Clock.Now so tests and --as-of can pin it.
type Clock interface {
	Now() time.Time
}

// RealClock provides actual system time, read in Location when set.
type RealClock struct {
	Location *time.Location
}

// Now returns the current system time.
func (c RealClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}

// TestClock provides a fixed, settable time.
type TestClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
}

// Now returns the pinned time.
func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// Set moves the pinned time.
func (c *TestClock) Set(t time.Time) {
	c.mu.Lock()
	c.CurrentTime = t
	c.mu.Unlock()
}

// Advance moves the pinned time forward by d.
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	c.mu.Unlock()
}
