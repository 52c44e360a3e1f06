package session

import "errors"

// Sentinel kinds for session errors.
var (
	// ErrAlreadyActive distinguishes "logged in elsewhere, retry later"
	// from unknown-credentials failures.
	ErrAlreadyActive = errors.New("session already active for account")
)
