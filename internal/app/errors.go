package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrUnauthorized marks a request carrying a bad register key. The
	// HTTP layer answers it with an empty 200 and no explanation.
	ErrUnauthorized = errors.New("register key mismatch")

	// ErrQueueFull means a match report was rejected by the bounded queue.
	ErrQueueFull = errors.New("report queue full")
)
