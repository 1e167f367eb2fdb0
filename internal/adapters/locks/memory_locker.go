package locks

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/hbnb/lodging-core/internal/domain/providers"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// maxReaders is the semaphore weight a writer claims; each reader claims 1.
const maxReaders = 1 << 30

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// MemoryLocker is a per-key readers/writer lock for a single process.
// Waiters are served in arrival order, so a queued writer is not starved by
// later readers. Entries are dropped when no holder or waiter remains.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewMemoryLocker creates a new in-process lock provider
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]*lockEntry)}
}

var _ providers.LockProvider = (*MemoryLocker)(nil)

// Lock acquires the exclusive section of key
func (l *MemoryLocker) Lock(ctx context.Context, key string) (providers.Unlock, error) {
	return l.acquire(ctx, key, maxReaders)
}

// RLock acquires a shared section of key
func (l *MemoryLocker) RLock(ctx context.Context, key string) (providers.Unlock, error) {
	return l.acquire(ctx, key, 1)
}

func (l *MemoryLocker) acquire(ctx context.Context, key string, weight int64) (providers.Unlock, error) {
	entry := l.ref(key)
	if err := entry.sem.Acquire(ctx, weight); err != nil {
		l.unref(key)
		return nil, apperrors.NewConcurrencyError(key, "could not acquire lock", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.sem.Release(weight)
			l.unref(key)
		})
	}, nil
}

func (l *MemoryLocker) ref(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(maxReaders)}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (l *MemoryLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

// Len reports how many keys are currently held or awaited
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
