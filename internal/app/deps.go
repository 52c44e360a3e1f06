package service

import (
	"context"
	"time"

	"github.com/takepoint/coordinator/internal/adapters/geo"
	"github.com/takepoint/coordinator/internal/domain/stats"
)

// ProfileStore is the durable home of cumulative player profiles and
// their raw match history.
type ProfileStore interface {
	LoadProfile(ctx context.Context, account string) (*stats.Profile, error)
	SaveProfile(ctx context.Context, account string, p *stats.Profile) error
	RecordMatchHistory(ctx context.Context, account string, d *stats.Delta, now int64) error
	PruneMatchHistory(ctx context.Context, retention time.Duration) (int64, error)
}

// AccountStore holds credentials. Authenticate accepts a username or an
// email address and returns the canonical username.
type AccountStore interface {
	Register(ctx context.Context, username, email, password string) error
	Authenticate(ctx context.Context, usernameOrEmail, password string) (string, error)
}

// SessionStore persists token-to-account bindings so browser cookies
// survive a restart of the in-memory coordinator.
type SessionStore interface {
	Put(ctx context.Context, account, token string) error
	Resume(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, account string) error
}

// Geolocator places a source IP for the server browser.
type Geolocator interface {
	Locate(ctx context.Context, addr string) (geo.Location, error)
}

// AliasResolver turns a server IP into a connectable hostname.
type AliasResolver interface {
	Alias(ctx context.Context, ip string) (string, error)
}
