// Package heartbeat provides a generic TTL-keyed map.
package heartbeat

import "time"

// Option applies a configuration option to the Store.
type Option[K comparable, V any] func(*Store[K, V])

// WithClock sets the time source. Tests inject a fake clock to drive
// TTL expiry deterministically.
func WithClock[K comparable, V any](clock func() time.Time) Option[K, V] {
	return func(s *Store[K, V]) {
		if clock != nil {
			s.clock = clock
		}
	}
}
