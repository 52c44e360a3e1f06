package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/takepoint/coordinator/internal/domain/stats"
	"github.com/takepoint/coordinator/pkg/logger"
)

// matchDoc is one games-collection document: the raw per-match delta an
// account reported, kept for a bounded retention window.
type matchDoc struct {
	ID         string      `bson:"_id"`
	Account    string      `bson:"account"`
	RecordedAt int64       `bson:"recordedAt"`
	Delta      stats.Delta `bson:"delta"`
}

// RecordMatchHistory appends the raw delta to the games collection.
func (s *PlayerStore) RecordMatchHistory(ctx context.Context, account string, d *stats.Delta, now int64) error {
	doc := matchDoc{
		ID:         uuid.NewString(),
		Account:    account,
		RecordedAt: now,
		Delta:      *d,
	}
	if _, err := s.games.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("record match for %q: %w", account, err)
	}
	return nil
}

// PruneMatchHistory deletes match documents older than the retention
// window and returns how many were removed.
func (s *PlayerStore) PruneMatchHistory(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.clock().Add(-retention).UnixMilli()
	res, err := s.games.DeleteMany(ctx, bson.M{"recordedAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("prune match history: %w", err)
	}
	if res.DeletedCount > 0 {
		s.logger.Info(ctx, "pruned match history", logger.Int64("deleted", res.DeletedCount))
	}
	return res.DeletedCount, nil
}
