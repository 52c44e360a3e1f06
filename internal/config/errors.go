package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr              = errors.New("addr must not be empty")
	ErrInvalidTTL             = errors.New("ttl values must be positive")
	ErrInvalidInterval        = errors.New("sweep intervals must be positive")
	ErrInvalidLeaderboardSize = errors.New("leaderboard size must be positive")
)
