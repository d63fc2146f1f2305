// Package version issues the authoritative zone versions.
package version

import "sync"

// Clock is a Lamport-style counter that stamps every accepted change with a
// strictly increasing version. It is seeded from storage on startup so
// versions keep growing across restarts.
type Clock struct {
	counter int64      // последняя выданная версия
	mu      sync.Mutex // мьютекс для потокобезопасности
}

// NewClock создает часы, продолжающие счет с версии seed
func NewClock(seed int64) *Clock {
	return &Clock{counter: max(seed, 0)}
}

// Next returns the next version.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	return c.counter
}

// Observe moves the clock past a version seen elsewhere (for example a zone
// imported with its own version). It never moves backwards.
func (c *Clock) Observe(v int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v > c.counter {
		c.counter = v
	}
}

// Current returns the last issued version without advancing.
func (c *Clock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counter
}
