// Package heartbeat provides a generic TTL-keyed map shared by the
// instance registry and the session coordinator. Each entry carries a
// last-seen timestamp; a sweep evicts entries whose silence exceeds a TTL.
package heartbeat

import (
	"sync"
	"time"
)

// Store tracks a value and a last-seen timestamp per key. All operations
// are total over the key space; there are no error conditions.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[V]
	clock   func() time.Time
}

type entry[V any] struct {
	value    V
	lastSeen time.Time
}

// New creates an empty store with configuration options.
func New[K comparable, V any](opts ...Option[K, V]) *Store[K, V] {
	s := &Store[K, V]{
		entries: make(map[K]*entry[V]),
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Touch inserts or replaces the value for key and sets its last-seen
// timestamp to now.
func (s *Store[K, V]) Touch(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &entry[V]{value: value, lastSeen: s.clock()}
}

// Upsert atomically computes the new value for key from the old one and
// refreshes the last-seen timestamp. fn receives the zero value and
// exists=false when the key is unknown.
func (s *Store[K, V]) Upsert(key K, fn func(old V, exists bool) V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old V
	e, ok := s.entries[key]
	if ok {
		old = e.value
	}
	s.entries[key] = &entry[V]{value: fn(old, ok), lastSeen: s.clock()}
}

// Refresh updates only the last-seen timestamp for key. Returns false if
// the key is unknown.
func (s *Store[K, V]) Refresh(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.lastSeen = s.clock()
	return true
}

// Get returns the value for key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether key is present.
func (s *Store[K, V]) Has(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[key]
	return ok
}

// Remove deletes key. Returns false if the key was unknown.
func (s *Store[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Len returns the number of live entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Sweep removes every entry whose last-seen timestamp is older than ttl
// and returns the evicted keys.
func (s *Store[K, V]) Sweep(ttl time.Duration) []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	var evicted []K
	for key, e := range s.entries {
		if now.Sub(e.lastSeen) > ttl {
			delete(s.entries, key)
			evicted = append(evicted, key)
		}
	}
	return evicted
}

// Each calls fn for every entry in a point-in-time snapshot. Mutations
// performed while iterating do not affect the snapshot.
func (s *Store[K, V]) Each(fn func(key K, value V)) {
	s.mu.RLock()
	type pair struct {
		key   K
		value V
	}
	snapshot := make([]pair, 0, len(s.entries))
	for key, e := range s.entries {
		snapshot = append(snapshot, pair{key: key, value: e.value})
	}
	s.mu.RUnlock()

	for _, p := range snapshot {
		fn(p.key, p.value)
	}
}
