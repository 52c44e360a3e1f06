// Package funfact maintains the globally-aggregated rolling statistics
// shown to all clients alongside the leaderboard.
//
// Counters are explicit structs with a named key, a numeric accumulator
// and a pure formatting function; Increment and DisplayValue are their
// only mutators/readers. The whole set resets together with the
// leaderboard at the daily boundary.
package funfact

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// Well-known counter names, mirroring what the game client displays.
const (
	ScoreGained      = "Score gained"
	Kills            = "Kills"
	DamageDealt      = "Damage dealt"
	KillsWithPistol  = "Kills with pistol"
	KillsWithAssault = "Kills with assault"
	KillsWithSniper  = "Kills with sniper"
	KillsWithShotgun = "Kills with shotgun"
	HoursPlayed      = "Hours played"
)

// Formatter renders an accumulator value for display.
type Formatter func(value float64) string

// Counter is a named running total with a display-formatted value.
type Counter struct {
	mu     sync.Mutex
	name   string
	value  float64
	format Formatter
}

// NewCounter creates a counter. A nil formatter falls back to
// thousands-grouped integer formatting.
func NewCounter(name string, format Formatter) *Counter {
	if format == nil {
		format = GroupThousands
	}
	return &Counter{name: name, format: format}
}

// Name returns the counter's display key.
func (c *Counter) Name() string {
	return c.name
}

// Increment adds amount to the running total.
func (c *Counter) Increment(amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += amount
}

// DisplayValue returns the formatted running total.
func (c *Counter) DisplayValue() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.format(c.value)
}

// Reset zeroes the running total.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = 0
}

// GroupThousands formats a value as a rounded integer with comma
// separators, e.g. 1234567.8 -> "1,234,568".
func GroupThousands(value float64) string {
	s := strconv.FormatFloat(value, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Set owns the full collection of fun-fact counters.
type Set struct {
	counters []*Counter
	byName   map[string]*Counter
}

// NewSet creates a set holding the given counters.
func NewSet(counters ...*Counter) *Set {
	s := &Set{
		counters: counters,
		byName:   make(map[string]*Counter, len(counters)),
	}
	for _, c := range counters {
		s.byName[c.Name()] = c
	}
	return s
}

// DefaultSet creates the standard counter collection.
func DefaultSet() *Set {
	return NewSet(
		NewCounter(ScoreGained, nil),
		NewCounter(Kills, nil),
		NewCounter(DamageDealt, nil),
		NewCounter(KillsWithPistol, nil),
		NewCounter(KillsWithAssault, nil),
		NewCounter(KillsWithSniper, nil),
		NewCounter(KillsWithShotgun, nil),
		NewCounter(HoursPlayed, nil),
	)
}

// Increment adds amount to the named counter. Unknown names are ignored.
func (s *Set) Increment(name string, amount float64) {
	if c, ok := s.byName[name]; ok {
		c.Increment(amount)
	}
}

// Get returns the named counter.
func (s *Set) Get(name string) (*Counter, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Pick returns the name and display value of one randomly chosen counter
// for the public game-state payload. Safe for concurrent use: the
// top-level rand functions carry their own lock.
func (s *Set) Pick() (string, string) {
	if len(s.counters) == 0 {
		return "", ""
	}
	c := s.counters[rand.IntN(len(s.counters))]
	return c.Name(), c.DisplayValue()
}

// ResetAll zeroes every counter. Called at the daily boundary.
func (s *Set) ResetAll() {
	for _, c := range s.counters {
		c.Reset()
	}
}
