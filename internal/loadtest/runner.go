package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/takepoint/coordinator/pkg/logger"
)

// Run executes the complete soak test: health check, report generation,
// concurrent submission, then leaderboard verification.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting coordination soak test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("reports", config.NumReports),
		logger.Int("accounts", config.NumAccounts),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	reports := generateReports(ctx, config, stats)

	if err := submitReports(ctx, config, reports, stats); err != nil {
		return fmt.Errorf("report submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for the merge pipeline to drain",
		logger.Duration("delay", config.SettleDelay),
	)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(config.SettleDelay):
	}

	board, err := fetchBoard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	if err := verifyBoard(ctx, config, reports, board, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "soak test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	return nil
}

// displayFinalStats summarizes the run.
func displayFinalStats(ctx context.Context, stats *Stats) {
	rate := 0.0
	if stats.Duration > 0 {
		rate = float64(stats.ReportsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "soak test statistics",
		logger.Int("generated", stats.ReportsGenerated),
		logger.Int("submitted", stats.ReportsSubmitted),
		logger.Int("successful", stats.ReportsSuccessful),
		logger.Int("throttled", stats.ReportsThrottled),
		logger.Int("failed", stats.ReportsFailed),
		logger.Int("boardEntries", stats.BoardEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("reportsPerSecond", rate),
	)
}
