// Package session coordinates active logged-in accounts.
//
// It layers a singleton-login rule on top of the heartbeat store: at most
// one active session exists per account, and a second login attempt while
// a session is active is rejected with ErrAlreadyActive rather than
// silently issuing a second token. The TTL is a liveness grace period,
// not a hard single-use lock.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/takepoint/coordinator/internal/domain/heartbeat"
	"github.com/takepoint/coordinator/pkg/metrics"
)

// Default session configuration constants.
const (
	defaultTTL = 60 * time.Second

	// tokenBytes gives 512 bits of randomness, rendered as 128 hex chars.
	tokenBytes = 64
)

// Coordinator tracks the accounts with an active session and their opaque
// tokens. State is process-lifetime only; the durable token copy lives in
// the external session store.
type Coordinator struct {
	store *heartbeat.Store[string, string]
	ttl   time.Duration
	clock func() time.Time
}

// New creates an empty coordinator with configuration options.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		ttl:   defaultTTL,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.store = heartbeat.New[string, string](heartbeat.WithClock[string, string](c.clock))

	return c
}

// Create starts a session for account and returns the freshly generated
// token. Returns ErrAlreadyActive without mutating the existing session
// when the account is already logged in.
func (c *Coordinator) Create(account string) (string, error) {
	if c.store.Has(account) {
		metrics.RecordSessionRejection()
		return "", ErrAlreadyActive
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	c.store.Touch(account, token)
	metrics.RecordSessionCreation()
	metrics.UpdateSessionsActive(c.store.Len())
	return token, nil
}

// Activate installs an existing token for account, refreshing the session
// if one is already active. Used when a session is resumed from a durable
// cookie rather than a fresh login.
func (c *Coordinator) Activate(account, token string) {
	c.store.Touch(account, token)
	metrics.UpdateSessionsActive(c.store.Len())
}

// IsActive reports whether account currently holds a session.
func (c *Coordinator) IsActive(account string) bool {
	return c.store.Has(account)
}

// Token returns the current token for account.
func (c *Coordinator) Token(account string) (string, bool) {
	return c.store.Get(account)
}

// Heartbeat refreshes the last-seen timestamp of every listed account.
// Unknown accounts are ignored. Returns the number of sessions refreshed.
// Game servers relay batches of currently-connected account names here.
func (c *Coordinator) Heartbeat(accounts []string) int {
	refreshed := 0
	for _, account := range accounts {
		if c.store.Refresh(account) {
			refreshed++
		}
	}
	return refreshed
}

// Logout explicitly ends the session for account.
func (c *Coordinator) Logout(account string) bool {
	removed := c.store.Remove(account)
	metrics.UpdateSessionsActive(c.store.Len())
	return removed
}

// Len returns the number of active sessions.
func (c *Coordinator) Len() int {
	return c.store.Len()
}

// Sweep evicts sessions silent for longer than the TTL and returns the
// affected accounts.
func (c *Coordinator) Sweep() []string {
	start := time.Now()
	evicted := c.store.Sweep(c.ttl)

	if len(evicted) > 0 {
		metrics.RecordSessionEvictions(len(evicted))
	}
	metrics.UpdateSessionsActive(c.store.Len())
	metrics.RecordSweepDuration("session", float64(time.Since(start).Milliseconds()))

	return evicted
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
