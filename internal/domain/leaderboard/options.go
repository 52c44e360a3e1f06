// Package leaderboard maintains the bounded daily top-N of account scores.
package leaderboard

import (
	"fmt"
	"time"
)

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithSize bounds the number of entries kept.
func WithSize(size int) Option {
	return func(b *Board) {
		if size > 0 {
			b.size = size
		}
	}
}

// WithUTCOffset fixes the timezone the daily reset boundary is computed
// in, independent of the host's local time.
func WithUTCOffset(hours int) Option {
	return func(b *Board) {
		b.zone = time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600)
	}
}

// WithClock sets the time source used for boundary checks.
func WithClock(clock func() time.Time) Option {
	return func(b *Board) {
		if clock != nil {
			b.clock = clock
		}
	}
}
