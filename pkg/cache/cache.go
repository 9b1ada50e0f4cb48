// Package cache provides byte-oriented caches for cluster results.
//
// Three backends are available: [FileCache] for CLI use, [RedisCache] for
// server deployments, and [NullCache] to disable caching. Keys are opaque
// strings; use [Key] to derive stable keys from a graph hash and run
// parameters.
package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by backends that distinguish misses by error
	// rather than the found flag.
	ErrCacheMiss = errors.New("cache miss")
)

// Cache stores opaque byte values under string keys with optional TTLs.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// found; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
