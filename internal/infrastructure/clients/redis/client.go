// Package redis holds the connection shared by the place cache, the
// distributed locks and the event bus.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hbnb/lodging-core/pkg/config"
	"github.com/hbnb/lodging-core/pkg/retry"
)

const connectAttempts = 3

// Client wraps a go-redis client
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis, retrying the first ping a few times so a
// container that is still starting does not fail the whole process.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		// Lock acquisition polls; keep the lease renewals from queuing
		// behind a burst of pollers.
		PoolSize: 20,
	})

	err := retry.DoWithLog(ctx, retry.ShortConfig(connectAttempts), "Redis",
		func() error { return client.Ping(ctx).Err() },
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Str("addr", cfg.RedisAddr()).Msg("Redis ping failed, retrying")
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}

	log.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.DB).Msg("connected to Redis")
	return &Client{client: client}, nil
}

// Wrap adopts an already configured go-redis client, e.g. one pointed at miniredis
func Wrap(client *redis.Client) *Client {
	return &Client{client: client}
}

func (c *Client) Client() *redis.Client { return c.client }

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
