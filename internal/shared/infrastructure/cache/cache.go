// Package cache provides a small byte-oriented cache used for hot read paths:
// the daily card pin and the product catalog response. The cache is an
// optimization only; every cached value can be recomputed from the database.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not in the cache.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a byte-oriented key/value store with per-key TTL.
type Cache interface {
	// Get retrieves a value by key. Returns ErrNotFound if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL. Pass 0 to store without expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
