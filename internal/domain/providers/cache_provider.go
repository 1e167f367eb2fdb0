package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by CacheProvider.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Add stores a value only if the key is absent and reports whether it did
	Add(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error)

	// Delete removes values from cache
	Delete(ctx context.Context, keys ...string) error
}
