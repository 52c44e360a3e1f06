// Package leaderboard maintains the bounded, rank-ordered daily top-N of
// account scores.
//
// The list keeps at most one entry per account (its personal best since
// the last reset) in descending score order, and is cleared at a daily
// boundary computed in a fixed UTC offset so the reset time does not
// depend on the deployment's local timezone.
package leaderboard

import (
	"sync"
	"time"

	"github.com/takepoint/coordinator/pkg/metrics"
)

// Default board configuration constants.
const (
	defaultSize = 5
)

// Entry is one leaderboard row.
type Entry struct {
	Account string `json:"username"`
	Score   int    `json:"score"`
}

// Board is the in-memory daily leaderboard. Linear scans are fine here:
// the list never exceeds the configured size.
type Board struct {
	mu      sync.RWMutex
	entries []Entry
	size    int
	zone    *time.Location
	clock   func() time.Time

	// lastReset is the logical date (in zone) of the most recent reset.
	lastReset string
}

// New creates an empty board with configuration options.
func New(opts ...Option) *Board {
	b := &Board{
		size:  defaultSize,
		zone:  time.UTC,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.lastReset = b.logicalDate(b.clock())

	return b
}

// Report applies one match score. Accounts reported with the empty
// sentinel value are never inserted. Returns true if the list changed.
func (b *Board) Report(account string, score int) bool {
	if account == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// An existing personal best dominates; a lower report never
	// changes the entry.
	for i, e := range b.entries {
		if e.Account != account {
			continue
		}
		if e.Score >= score {
			return false
		}
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		break
	}

	pos := len(b.entries)
	for i, e := range b.entries {
		if e.Score < score {
			pos = i
			break
		}
	}
	if pos >= b.size {
		return false
	}

	b.entries = append(b.entries, Entry{})
	copy(b.entries[pos+1:], b.entries[pos:])
	b.entries[pos] = Entry{Account: account, Score: score}

	if len(b.entries) > b.size {
		b.entries = b.entries[:b.size]
	}

	metrics.RecordLeaderboardUpdate()
	return true
}

// Snapshot returns the ordered list for display.
func (b *Board) Snapshot() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of current entries.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries)
}

// ResetIfBoundaryCrossed clears the board when the logical date (in the
// configured fixed zone) differs from the date of the last reset.
// Returns true exactly once per calendar boundary.
func (b *Board) ResetIfBoundaryCrossed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	today := b.logicalDate(b.clock())
	if today == b.lastReset {
		return false
	}

	b.entries = nil
	b.lastReset = today
	metrics.RecordLeaderboardReset()
	return true
}

func (b *Board) logicalDate(now time.Time) string {
	return now.In(b.zone).Format(time.DateOnly)
}
