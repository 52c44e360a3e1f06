// Package registry tracks live game-server instances for client discovery.
//
// Instances self-register and must re-register (heartbeat) at an interval
// safely under the TTL or be considered dead and removed from discovery
// results by the periodic sweep.
package registry

import (
	"iter"
	"time"

	"github.com/takepoint/coordinator/internal/domain/heartbeat"
	"github.com/takepoint/coordinator/pkg/metrics"
)

// Default registry configuration constants.
const (
	defaultTTL = 30 * time.Second
)

// Attributes is the public attribute bag of an instance, served verbatim
// in discovery responses. Region, city, URL and the descriptive metadata
// are set once at first registration; only the player count is refreshed
// by subsequent heartbeats.
type Attributes struct {
	Region   string `json:"region"`
	City     string `json:"city"`
	GameType string `json:"game_type"`
	Owner    string `json:"owner"`
	Label    string `json:"label"`
	URL      string `json:"url"`
	ShortID  string `json:"short_id"`
	Players  int    `json:"players"`
	Capacity int    `json:"capacity"`
}

// Registry is the in-memory fleet of live instances. State is
// process-lifetime only and rebuilt from heartbeats after a restart.
type Registry struct {
	store *heartbeat.Store[string, Attributes]
	ttl   time.Duration
	clock func() time.Time
}

// New creates an empty registry with configuration options.
func New(opts ...Option) *Registry {
	r := &Registry{
		ttl:   defaultTTL,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.store = heartbeat.New[string, Attributes](heartbeat.WithClock[string, Attributes](r.clock))

	return r
}

// Register creates the instance on first call and treats subsequent calls
// with the same id as heartbeats: the last-seen timestamp is refreshed and
// only the mutable player count is updated.
func (r *Registry) Register(id string, attrs Attributes) {
	r.store.Upsert(id, func(old Attributes, exists bool) Attributes {
		if !exists {
			return attrs
		}
		old.Players = attrs.Players
		return old
	})

	metrics.RecordInstanceRegistration()
	metrics.UpdateInstancesLive(r.store.Len())
}

// Has reports whether an instance with id is currently registered.
func (r *Registry) Has(id string) bool {
	return r.store.Has(id)
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	return r.store.Len()
}

// List produces a restartable snapshot sequence of the live instances'
// public attribute bags, for discovery responses.
func (r *Registry) List() iter.Seq[Attributes] {
	return func(yield func(Attributes) bool) {
		done := false
		r.store.Each(func(_ string, attrs Attributes) {
			if done {
				return
			}
			if !yield(attrs) {
				done = true
			}
		})
	}
}

// Sweep evicts instances silent for longer than the TTL and returns the
// evicted ids.
func (r *Registry) Sweep() []string {
	start := time.Now()
	evicted := r.store.Sweep(r.ttl)

	if len(evicted) > 0 {
		metrics.RecordInstanceEvictions(len(evicted))
	}
	metrics.UpdateInstancesLive(r.store.Len())
	metrics.RecordSweepDuration("registry", float64(time.Since(start).Milliseconds()))

	return evicted
}
