package loadtest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/takepoint/coordinator/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "loadtest_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the soak test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Coordinator Soak Test Tool
==========================

A concurrent tool for exercising the match report pipeline end to end:
it submits synthetic reports and verifies the resulting leaderboard.

Usage:
  go run cmd/loadtest/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -key string
        Register key shared with the service
  -reports int
        Number of match reports to generate and submit (default 5000)
  -accounts int
        Number of synthetic accounts reports spread over (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        Wait between submission and verification (default 3s)
  -log string
        Log file for test output (default: loadtest_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/loadtest/main.go -key dev-register-key

  # Test with custom parameters
  go run cmd/loadtest/main.go -reports 50000 -workers 16 -url http://localhost:9090 -key dev-register-key

  # Test with verbose output
  go run cmd/loadtest/main.go -verbose -reports 10000 -key dev-register-key
`)
}
