package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sessionDoc binds a login token to an account so browsers can resume a
// session from a cookie after the in-memory coordinator restarts.
type sessionDoc struct {
	Account   string `bson:"_id"`
	Token     string `bson:"token"`
	UpdatedAt int64  `bson:"updatedAt"`
}

// SessionStore persists token-to-account bindings.
type SessionStore struct {
	sessions *mongo.Collection
	clock    func() time.Time
}

// NewSessionStore creates a store over the client's sessions collection.
func NewSessionStore(c *Client, opts ...StoreOption) *SessionStore {
	settings := newStoreSettings(opts...)
	return &SessionStore{
		sessions: c.Collection(collSessions),
		clock:    settings.clock,
	}
}

// Put stores the account's current token, replacing any previous one.
func (s *SessionStore) Put(ctx context.Context, account, token string) error {
	doc := sessionDoc{
		Account:   account,
		Token:     token,
		UpdatedAt: s.clock().UnixMilli(),
	}
	_, err := s.sessions.ReplaceOne(ctx,
		bson.M{"_id": account},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store session for %q: %w", account, err)
	}
	return nil
}

// Resume returns the account bound to the token, or ErrSessionNotFound.
func (s *SessionStore) Resume(ctx context.Context, token string) (string, error) {
	var doc sessionDoc
	err := s.sessions.FindOne(ctx, bson.M{"token": token}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return "", ErrSessionNotFound
	case err != nil:
		return "", fmt.Errorf("resume session: %w", err)
	}
	return doc.Account, nil
}

// Delete removes the account's stored session, if any.
func (s *SessionStore) Delete(ctx context.Context, account string) error {
	if _, err := s.sessions.DeleteOne(ctx, bson.M{"_id": account}); err != nil {
		return fmt.Errorf("delete session for %q: %w", account, err)
	}
	return nil
}
