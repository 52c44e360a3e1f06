// Package model contains domain models passed between layers.
package model

import "github.com/takepoint/coordinator/internal/domain/stats"

// MatchReport is a single finished-match submission queued for merging.
// The MatchID inside the delta is the idempotency key.
type MatchReport struct {
	Account string      // profile the delta applies to
	Delta   stats.Delta // per-match counters reported by the game server
}

// ID returns the report's idempotency key.
func (r MatchReport) ID() string {
	return r.Delta.MatchID
}
