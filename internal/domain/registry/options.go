// Package registry tracks live game-server instances for client discovery.
package registry

import "time"

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithTTL sets the staleness window after which a silent instance is
// evicted by the sweep.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock sets the time source used for heartbeats and sweeps.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}
