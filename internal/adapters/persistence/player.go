package persistence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/finnbear/moderation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/takepoint/coordinator/internal/domain/stats"
	"github.com/takepoint/coordinator/pkg/logger"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// ValidUsername reports whether a username is acceptable for
// registration: 3 to 16 word characters with no profanity.
func ValidUsername(username string) bool {
	if !usernamePattern.MatchString(username) {
		return false
	}
	return !moderation.Scan(username).Is(moderation.Inappropriate)
}

// playerDoc is the players-collection document: credentials plus the
// cumulative profile, keyed by username. UsernameLower backs the
// case-insensitive uniqueness and login lookups.
type playerDoc struct {
	Username      string `bson:"_id"`
	UsernameLower string `bson:"usernameLower"`
	Email         string `bson:"email"`
	PasswordHash  string `bson:"passwordHash"`

	Stats stats.Profile `bson:"stats"`
}

// reservedDoc marks a username as off limits for registration.
type reservedDoc struct {
	Username string `bson:"_id"`
}

// newPlayerDoc builds the insert document for a fresh registration. The
// display username keeps its case; the lookup fields are lowercased.
func newPlayerDoc(username, email, passwordHash string, now int64) playerDoc {
	return playerDoc{
		Username:      username,
		UsernameLower: strings.ToLower(username),
		Email:         strings.ToLower(email),
		PasswordHash:  passwordHash,
		Stats:         *stats.NewProfile(now),
	}
}

// usernameTakenFilter matches any account holding the username in any
// casing.
func usernameTakenFilter(username string) bson.M {
	return bson.M{"usernameLower": strings.ToLower(username)}
}

func emailTakenFilter(email string) bson.M {
	return bson.M{"email": strings.ToLower(email)}
}

// credentialFilter matches the login identifier against usernames and
// email addresses, case-insensitively.
func credentialFilter(usernameOrEmail string) bson.M {
	lower := strings.ToLower(usernameOrEmail)
	return bson.M{"$or": bson.A{
		bson.M{"usernameLower": lower},
		bson.M{"email": lower},
	}}
}

// PlayerStore persists accounts and their cumulative profiles.
type PlayerStore struct {
	players  *mongo.Collection
	reserved *mongo.Collection
	games    *mongo.Collection
	clock    func() time.Time

	logger logger.Logger
}

// NewPlayerStore creates a store over the client's players collections.
func NewPlayerStore(c *Client, opts ...StoreOption) *PlayerStore {
	settings := newStoreSettings(opts...)
	return &PlayerStore{
		players:  c.Collection(collPlayers),
		reserved: c.Collection(collReserved),
		games:    c.Collection(collGames),
		clock:    settings.clock,
		logger:   logger.Get().Named("players"),
	}
}

// Register creates a new account with a fresh profile. Username failures
// (malformed, reserved or taken) surface as ErrUsernameUnavailable,
// email collisions as ErrEmailUnavailable.
func (s *PlayerStore) Register(ctx context.Context, username, email, password string) error {
	if !ValidUsername(username) {
		return ErrUsernameUnavailable
	}

	lower := strings.ToLower(username)
	err := s.reserved.FindOne(ctx, bson.M{"_id": lower}).Err()
	switch {
	case err == nil:
		return ErrUsernameUnavailable
	case !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("check reserved username %q: %w", username, err)
	}

	count, err := s.players.CountDocuments(ctx, usernameTakenFilter(username))
	if err != nil {
		return fmt.Errorf("check username availability: %w", err)
	}
	if count > 0 {
		return ErrUsernameUnavailable
	}

	count, err = s.players.CountDocuments(ctx, emailTakenFilter(email))
	if err != nil {
		return fmt.Errorf("check email availability: %w", err)
	}
	if count > 0 {
		return ErrEmailUnavailable
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	doc := newPlayerDoc(username, email, string(hash), s.clock().UnixMilli())
	if _, err := s.players.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUsernameUnavailable
		}
		return fmt.Errorf("insert player %q: %w", username, err)
	}

	s.logger.Info(ctx, "account registered", logger.String("account", username))
	return nil
}

// Authenticate verifies a password against the account matching the
// given username or email address, case-insensitively, and returns the
// canonical username. Every failure mode collapses to
// ErrInvalidCredentials.
func (s *PlayerStore) Authenticate(ctx context.Context, usernameOrEmail, password string) (string, error) {
	var doc playerDoc
	err := s.players.FindOne(ctx, credentialFilter(usernameOrEmail)).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return "", ErrInvalidCredentials
	case err != nil:
		return "", fmt.Errorf("load player %q: %w", usernameOrEmail, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return doc.Username, nil
}

// LoadProfile returns the account's cumulative profile.
func (s *PlayerStore) LoadProfile(ctx context.Context, account string) (*stats.Profile, error) {
	var doc playerDoc
	err := s.players.FindOne(ctx, bson.M{"_id": account}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrProfileNotFound
	case err != nil:
		return nil, fmt.Errorf("load profile for %q: %w", account, err)
	}
	return &doc.Stats, nil
}

// SaveProfile replaces the account's cumulative profile.
func (s *PlayerStore) SaveProfile(ctx context.Context, account string, p *stats.Profile) error {
	res, err := s.players.UpdateOne(ctx,
		bson.M{"_id": account},
		bson.M{"$set": bson.M{"stats": p}},
	)
	if err != nil {
		return fmt.Errorf("save profile for %q: %w", account, err)
	}
	if res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Reserve marks a username (case-insensitively) as unavailable.
func (s *PlayerStore) Reserve(ctx context.Context, username string) error {
	_, err := s.reserved.InsertOne(ctx, reservedDoc{Username: strings.ToLower(username)})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("reserve username %q: %w", username, err)
	}
	return nil
}
