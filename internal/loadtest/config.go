package loadtest

import "time"

// Config holds configuration for the coordination soak test.
type Config struct {
	BaseURL     string        // Base URL of the service
	RegisterKey string        // Shared key carried by simulated game servers
	NumReports  int           // Number of match reports to generate
	NumAccounts int           // Number of synthetic accounts reports spread over
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	SettleDelay time.Duration // Wait between submission and verification
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// report is the wire payload for one simulated end-of-round submission.
type report struct {
	Auth     reportAuth  `json:"auth"`
	Username string      `json:"username"`
	Stats    reportStats `json:"stats"`
}

type reportAuth struct {
	RegisterKey string `json:"registerKey"`
}

// reportStats carries the subset of the match delta the generator
// exercises.
type reportStats struct {
	MatchID      string `json:"matchId"`
	Score        int    `json:"score"`
	TimeAlive    int64  `json:"timeAlive"`
	Kills        int    `json:"kills"`
	Deaths       int    `json:"deaths"`
	BulletsFired int    `json:"bulletsFired"`
	BulletsHit   int    `json:"bulletsHit"`
	SpawnTime    int64  `json:"spawnTime"`
}

// boardEntry is one parsed leaderboard row from /gameState.
type boardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Stats holds test statistics.
type Stats struct {
	ReportsGenerated  int
	ReportsSubmitted  int
	ReportsSuccessful int
	ReportsThrottled  int
	ReportsFailed     int
	BoardEntries      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
