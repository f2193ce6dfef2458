package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const retryDelay = 100 * time.Millisecond

// RedisLocker serializes keys across replicas with a redsync mutex.
// The expiry caps how long a crashed holder can block a conversation.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	prefix string
	log    zerolog.Logger
}

func NewRedisLocker(client *redis.Client, expiry time.Duration, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
		prefix: "support-api:lock:",
		log:    log.With().Str("component", "redis-locker").Logger(),
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	// Enough tries to wait out a full expiry; ctx still bounds the wait.
	tries := int(l.expiry/retryDelay) + 1
	mutex := l.rs.NewMutex(l.prefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(retryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return func() {
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			l.log.Error().Err(err).Str("key", key).Msg("failed to unlock mutex")
		}
	}, nil
}
