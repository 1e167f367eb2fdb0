package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/hbnb/lodging-core/internal/infrastructure/clients/redis"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

func TestMemoryLocker_ExclusiveSerializes(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "place:p-1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locker.Len(), "entries are dropped once released")
}

func TestMemoryLocker_SharedExcludesExclusive(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	r1, err := locker.RLock(ctx, "k")
	require.NoError(t, err)
	r2, err := locker.RLock(ctx, "k")
	require.NoError(t, err, "readers share")

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(timeout, "k")
	assert.True(t, apperrors.IsConcurrency(err), "writer waits for readers")

	r1()
	r2()
	r2()

	w, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	w()
}

func TestMemoryLocker_DisjointKeysDoNotBlock(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	a, err := locker.Lock(ctx, "place:a")
	require.NoError(t, err)
	defer a()

	timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	b, err := locker.Lock(timeout, "place:b")
	require.NoError(t, err)
	b()
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisclient.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, time.Second, "lock:"), mr
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	locker, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "place:p-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:place:p-1"))

	unlock()
	assert.False(t, mr.Exists("lock:place:p-1"))
}

func TestRedisLocker_HeldByAnotherProcess(t *testing.T) {
	locker, mr := newRedisLocker(t)
	require.NoError(t, mr.Set("lock:place:p-1", "someone-else"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := locker.Lock(ctx, "place:p-1")
	assert.True(t, apperrors.IsConcurrency(err))

	got, _ := mr.Get("lock:place:p-1")
	assert.Equal(t, "someone-else", got, "foreign lock is left untouched")
}

func TestRedisLocker_ReleaseDoesNotStealExpiredLock(t *testing.T) {
	locker, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "place:p-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock:place:p-1", "new-owner"))

	unlock()
	got, _ := mr.Get("lock:place:p-1")
	assert.Equal(t, "new-owner", got)
}

func TestRedisLocker_LeaseOutlivesTTLWhileHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	newLocker := func() *RedisLocker {
		client := redisclient.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisLocker(client, 300*time.Millisecond, "lock:")
	}
	first, second := newLocker(), newLocker()
	ctx := context.Background()

	unlock, err := first.Lock(ctx, "place:p-1")
	require.NoError(t, err)

	// Redis time only moves with FastForward; the renewal runs on wall time.
	mr.FastForward(250 * time.Millisecond)
	require.Eventually(t, func() bool {
		return mr.TTL("lock:place:p-1") > 250*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond, "holder renews its lease")
	mr.FastForward(250 * time.Millisecond)
	require.True(t, mr.Exists("lock:place:p-1"), "lease survives past the original ttl")

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = second.Lock(waitCtx, "place:p-1")
	assert.True(t, apperrors.IsConcurrency(err), "another process stays excluded")

	unlock()
	assert.False(t, mr.Exists("lock:place:p-1"))

	unlockSecond, err := second.Lock(ctx, "place:p-1")
	require.NoError(t, err)
	unlockSecond()
}

func TestRedisLocker_StopsRenewingLostLease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	locker := NewRedisLocker(client, 90*time.Millisecond, "lock:")

	unlock, err := locker.Lock(context.Background(), "place:p-1")
	require.NoError(t, err)
	defer unlock()

	require.NoError(t, mr.Set("lock:place:p-1", "new-owner"))
	time.Sleep(100 * time.Millisecond)

	got, _ := mr.Get("lock:place:p-1")
	assert.Equal(t, "new-owner", got)
	assert.Zero(t, mr.TTL("lock:place:p-1"), "a foreign key is never given our lease")
}
