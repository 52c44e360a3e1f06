package loadtest

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/takepoint/coordinator/pkg/logger"
)

// Score tiers for synthetic players. A small elite keeps the top of the
// board contested while the bulk of reports land in the midfield.
const (
	eliteScoreMin   = 4000
	eliteScoreRange = 2000
	midScoreMin     = 500
	midScoreRange   = 2500
	lowScoreMin     = 0
	lowScoreRange   = 400

	eliteShare = 10 // percent of accounts in the elite tier
	lowShare   = 30
)

const randomDivisor = 1000000

// randomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomDivisor))
	return float64(n.Int64()) / float64(randomDivisor)
}

func randomInt(min, span int) int {
	if span <= 0 {
		return min
	}
	return min + int(randomFloat()*float64(span))
}

// generateReports fabricates match reports across the synthetic account
// pool. Every report carries a unique match id so none are dropped as
// duplicates.
func generateReports(ctx context.Context, config *Config, stats *Stats) []report {
	logger.Get().Info(ctx, "generating match reports",
		logger.Int("reports", config.NumReports),
		logger.Int("accounts", config.NumAccounts),
	)

	now := time.Now().UnixMilli()
	reports := make([]report, config.NumReports)

	for i := range reports {
		account := i % config.NumAccounts
		score := accountScore(account, config.NumAccounts)

		kills := score / 400
		fired := kills*8 + randomInt(10, 40)
		timeAlive := int64(randomInt(30_000, 240_000))

		reports[i] = report{
			Auth:     reportAuth{RegisterKey: config.RegisterKey},
			Username: "load-player-" + strconv.Itoa(account),
			Stats: reportStats{
				MatchID:      uuid.NewString(),
				Score:        score,
				TimeAlive:    timeAlive,
				Kills:        kills,
				Deaths:       randomInt(0, 6),
				BulletsFired: fired,
				BulletsHit:   fired / 2,
				SpawnTime:    now - timeAlive,
			},
		}
	}

	stats.ReportsGenerated = len(reports)
	return reports
}

// accountScore draws a score from the tier the account belongs to.
func accountScore(account, total int) int {
	percentile := account * 100 / total
	switch {
	case percentile < eliteShare:
		return randomInt(eliteScoreMin, eliteScoreRange)
	case percentile < eliteShare+lowShare:
		return randomInt(lowScoreMin, lowScoreRange)
	default:
		return randomInt(midScoreMin, midScoreRange)
	}
}
