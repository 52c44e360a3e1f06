package loadtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/takepoint/coordinator/pkg/logger"
)

// verifyBoard checks the fetched leaderboard against the reports the run
// submitted. Each account should appear with its best single-match score,
// and the board must stay sorted. Exact scores are only checked when no
// report was throttled; throttled reports never reach the board.
func verifyBoard(ctx context.Context, config *Config, reports []report, board []boardEntry, stats *Stats) error {
	logger.Get().Info(ctx, "verifying leaderboard")

	if len(board) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	for i := 1; i < len(board); i++ {
		if board[i].Score > board[i-1].Score {
			return fmt.Errorf("board not sorted: entry %d outranks entry %d", i, i-1)
		}
	}

	if stats.ReportsThrottled > 0 {
		logger.Get().Warn(ctx, "skipping exact score checks, some reports were throttled",
			logger.Int("throttled", stats.ReportsThrottled),
		)
		displayBoard(ctx, board, config.Verbose, reports)
		return nil
	}

	expected := expectedTop(reports, len(board))

	top := board[0]
	if top.Username != expected[0].Username {
		return fmt.Errorf("top entry is %q, expected %q", top.Username, expected[0].Username)
	}

	for i, entry := range board {
		if entry.Score != expected[i].Score {
			return fmt.Errorf("entry %d has score %d, expected %d", i, entry.Score, expected[i].Score)
		}
	}

	displayBoard(ctx, board, config.Verbose, reports)
	return nil
}

// expectedTop computes the best single-match score per account and
// returns the top n sorted the way the board sorts.
func expectedTop(reports []report, n int) []boardEntry {
	best := make(map[string]int)
	for _, r := range reports {
		if r.Stats.Score > best[r.Username] {
			best[r.Username] = r.Stats.Score
		}
	}

	entries := make([]boardEntry, 0, len(best))
	for account, score := range best {
		entries = append(entries, boardEntry{Username: account, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// displayBoard logs the fetched entries, plus score statistics when
// verbose output is enabled.
func displayBoard(ctx context.Context, board []boardEntry, verbose bool, reports []report) {
	for i, entry := range board {
		logger.Get().Info(ctx, "leaderboard entry",
			logger.Int("rank", i+1),
			logger.String("username", entry.Username),
			logger.Int("score", entry.Score),
		)
	}

	if !verbose || len(reports) == 0 {
		return
	}

	sum, max, min := 0, reports[0].Stats.Score, reports[0].Stats.Score
	for _, r := range reports {
		sum += r.Stats.Score
		if r.Stats.Score > max {
			max = r.Stats.Score
		}
		if r.Stats.Score < min {
			min = r.Stats.Score
		}
	}
	logger.Get().Info(ctx, "score statistics",
		logger.Int("average", sum/len(reports)),
		logger.Int("maximum", max),
		logger.Int("minimum", min),
	)
}
