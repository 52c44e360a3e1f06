package persistence

import "errors"

// Sentinel errors returned by the stores. The HTTP layer maps these to
// the numeric result codes clients expect.
var (
	// ErrUsernameUnavailable covers taken, reserved and malformed usernames.
	ErrUsernameUnavailable = errors.New("username unavailable")

	// ErrEmailUnavailable means the email is already bound to an account.
	ErrEmailUnavailable = errors.New("email unavailable")

	// ErrInvalidCredentials is returned for any login failure. It is
	// deliberately indistinct so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProfileNotFound means no player document exists for the account.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrSessionNotFound means no stored session matches the token.
	ErrSessionNotFound = errors.New("session not found")
)
