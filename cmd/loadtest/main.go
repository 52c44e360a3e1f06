package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/takepoint/coordinator/internal/loadtest"
)

// Default configuration constants.
const (
	defaultNumReports  = 5000
	defaultNumAccounts = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultSettleDelay = 3 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "Base URL of the service")
		registerKey = flag.String("key", "", "Register key shared with the service")
		numReports  = flag.Int("reports", defaultNumReports, "Number of match reports to generate and submit")
		numAccounts = flag.Int("accounts", defaultNumAccounts, "Number of synthetic accounts reports spread over")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle      = flag.Duration("settle", defaultSettleDelay, "Wait between submission and verification")
		logFile     = flag.String("log", "", "Log file for test output (default: loadtest_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := loadtest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:     *baseURL,
		RegisterKey: *registerKey,
		NumReports:  *numReports,
		NumAccounts: *numAccounts,
		Workers:     *workers,
		Timeout:     *timeout,
		SettleDelay: *settle,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Soak test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
