// Package persistence is the MongoDB adapter for durable player state:
// accounts, profiles, sessions and match history.
package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/takepoint/coordinator/pkg/logger"
)

const defaultConnectTimeout = 10 * time.Second

// Collection names.
const (
	collPlayers  = "players"
	collSessions = "sessions"
	collGames    = "games"
	collReserved = "reservedUsers"
)

// Client wraps *mongo.Client with the database handle used by the stores.
type Client struct {
	mongoClient    *mongo.Client
	database       string
	connectTimeout time.Duration

	logger logger.Logger
}

// NewClient connects to MongoDB and verifies the connection with a ping.
func NewClient(ctx context.Context, uri, database string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		database:       database,
		connectTimeout: defaultConnectTimeout,
		logger:         logger.Get().Named("mongo"),
	}

	for _, opt := range opts {
		opt(c)
	}

	connectCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	mc, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := mc.Ping(connectCtx, readpref.Primary()); err != nil {
		if derr := mc.Disconnect(context.Background()); derr != nil {
			c.logger.Warn(ctx, "disconnect after failed ping", logger.Error(derr))
		}
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	c.mongoClient = mc
	c.logger.Info(ctx, "connected to mongodb", logger.String("database", database))

	return c, nil
}

// Collection returns a handle to the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.mongoClient.Database(c.database).Collection(name)
}

// Disconnect closes the underlying connection pool.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.mongoClient.Disconnect(ctx)
}
