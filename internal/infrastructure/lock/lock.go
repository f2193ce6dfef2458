// Package lock provides the per-conversation write locks.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/domain/conversation"
)

// New returns the locker for LOCK_BACKEND. client may be nil for the local backend.
func New(backend string, client *redis.Client, expiry time.Duration, log zerolog.Logger) (conversation.Locker, error) {
	switch backend {
	case "local", "":
		return NewLocalLocker(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis lock backend requires a redis client")
		}
		return NewRedisLocker(client, expiry, log), nil
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", backend)
	}
}

// NewRedisClient parses REDIS_URL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

var (
	_ conversation.Locker = (*LocalLocker)(nil)
	_ conversation.Locker = (*RedisLocker)(nil)
)
