// Package session coordinates active logged-in accounts.
package session

import "time"

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithTTL sets the staleness window after which a silent session is
// evicted by the sweep.
func WithTTL(ttl time.Duration) Option {
	return func(c *Coordinator) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source used for heartbeats and sweeps.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}
