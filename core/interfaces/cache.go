// Package interfaces defines the core interfaces used throughout the application.
// These interfaces allow for dependency injection and make the code testable.
package interfaces

import (
	"context"
	"time"
)

// Cache defines the interface for cache operations.
// Backends are a directory of JSON files, go-cache, Redis or SQLite.
// LLM results are stored with a zero TTL and never expire.
//
// Example usage:
//
//	err := cache.Set(ctx, "summary_gpt-4o_9e107d9d372bb6826bd81d3542a419d6", payload, 0)
//
//	data, err := cache.Get(ctx, "summary_gpt-4o_9e107d9d372bb6826bd81d3542a419d6")
//	if err != nil {
//		// cache miss
//	}
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached data as []byte or an error if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given key and TTL.
	// If ttl is 0, the value should be stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}