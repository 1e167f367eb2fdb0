package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hbnb/lodging-core/internal/domain/providers"
	redisclient "github.com/hbnb/lodging-core/internal/infrastructure/clients/redis"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// releaseScript deletes the lock only if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript renews the lease only if we still own it
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

const (
	defaultPollInterval = 10 * time.Millisecond
	defaultLeaseTTL     = 10 * time.Second
)

// RedisLocker extends the in-process locks with Redis token locks so that
// exclusive sections hold across every process sharing the Redis instance.
// Shared sections are process-local.
type RedisLocker struct {
	client       *redisclient.Client
	local        *MemoryLocker
	ttl          time.Duration
	prefix       string
	pollInterval time.Duration
}

// NewRedisLocker creates a distributed lock provider.
// ttl bounds how long a crashed holder can block others; a live holder renews
// its lease every ttl/3 until it unlocks.
func NewRedisLocker(client *redisclient.Client, ttl time.Duration, prefix string) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &RedisLocker{
		client:       client,
		local:        NewMemoryLocker(),
		ttl:          ttl,
		prefix:       prefix,
		pollInterval: defaultPollInterval,
	}
}

var _ providers.LockProvider = (*RedisLocker)(nil)

// Lock acquires the process-local exclusive section, then the Redis lock
func (l *RedisLocker) Lock(ctx context.Context, key string) (providers.Unlock, error) {
	unlockLocal, err := l.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	redisKey := l.prefix + key
	token := uuid.New().String()
	if err := l.obtain(ctx, redisKey, token); err != nil {
		unlockLocal()
		return nil, err
	}

	stopRenew := l.renew(redisKey, token)

	var once sync.Once
	return func() {
		once.Do(func() {
			stopRenew()
			// release must not be skipped because the caller's ctx is done
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client.Client(), []string{redisKey}, token).Err(); err != nil {
				log.Warn().Err(err).Str("lock_key", redisKey).Msg("failed to release redis lock")
			}
			unlockLocal()
		})
	}, nil
}

// renew keeps the lease alive until the returned stop func is called. It gives
// up once the key belongs to someone else.
func (l *RedisLocker) renew(redisKey, token string) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.renewInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			renewed, err := extendScript.Run(ctx, l.client.Client(), []string{redisKey}, token, l.ttl.Milliseconds()).Int64()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Warn().Err(err).Str("lock_key", redisKey).Msg("failed to renew redis lock")
				continue
			}
			if renewed == 0 {
				log.Error().Str("lock_key", redisKey).Msg("redis lock lease lost while held")
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (l *RedisLocker) renewInterval() time.Duration {
	interval := l.ttl / 3
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return interval
}

// RLock acquires a process-local shared section
func (l *RedisLocker) RLock(ctx context.Context, key string) (providers.Unlock, error) {
	return l.local.RLock(ctx, key)
}

func (l *RedisLocker) obtain(ctx context.Context, redisKey, token string) error {
	for {
		ok, err := l.client.Client().SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return apperrors.NewConcurrencyError(redisKey, "could not acquire lock", ctx.Err())
			}
			return apperrors.NewPersistenceError(fmt.Sprintf("failed to acquire lock %s", redisKey), err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return apperrors.NewConcurrencyError(redisKey, "could not acquire lock", ctx.Err())
		case <-time.After(l.pollInterval):
		}
	}
}
