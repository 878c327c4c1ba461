package analytics

import (
	"context"
	"time"
)

// ResultCache is the key-value store memoizing aggregation results. It is a
// best-effort optimization: callers must treat every error as a miss (reads)
// or a no-op (writes) and fall through to computing fresh results.
type ResultCache interface {
	// Get returns the cached bytes for key and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Keys returns the keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Delete removes the given keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// FlushAll clears the whole cache namespace.
	FlushAll(ctx context.Context) error

	// Ping reports whether the cache store is reachable.
	Ping(ctx context.Context) error
}
