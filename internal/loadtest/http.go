package loadtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/takepoint/coordinator/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPClient wraps http.Client with a shared timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// submitReports pushes the generated reports through a worker pool.
func submitReports(ctx context.Context, config *Config, reports []report, stats *Stats) error {
	logger.Get().Info(ctx, "submitting match reports",
		logger.Int("reports", len(reports)),
		logger.Int("workers", config.Workers),
	)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/report_match"

	var (
		successful int64
		throttled  int64
		failed     int64
	)

	work := make(chan report)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range work {
				resp, err := client.Post(ctx, url, r)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}

				switch resp.StatusCode {
				case http.StatusAccepted:
					atomic.AddInt64(&successful, 1)
				case http.StatusTooManyRequests:
					atomic.AddInt64(&throttled, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				drainAndClose(resp)
			}
		}()
	}

	for _, r := range reports {
		select {
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return ctx.Err()
		case work <- r:
		}
	}
	close(work)
	wg.Wait()

	stats.ReportsSubmitted = len(reports)
	stats.ReportsSuccessful = int(successful)
	stats.ReportsThrottled = int(throttled)
	stats.ReportsFailed = int(failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(reports))
	}
	return nil
}

// fetchBoard pulls /gameState and extracts the ranked entries. The
// payload keys entries by rank index next to one fun-fact key.
func fetchBoard(ctx context.Context, config *Config, stats *Stats) ([]boardEntry, error) {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/gameState")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game state: %w", err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("game state returned status %d", resp.StatusCode)
	}

	var payload map[string]jsoniter.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}

	var entries []boardEntry
	for i := 0; ; i++ {
		raw, ok := payload[fmt.Sprintf("%d", i)]
		if !ok {
			break
		}
		var entry boardEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode board entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	stats.BoardEntries = len(entries)
	return entries, nil
}
