// Package cache provides pluggable response caching for registry lookups.
//
// Three backends are available:
//   - file: directory-based cache for CLI usage (default)
//   - redis: Redis-backed cache for long-running deployments
//   - null: no-op cache for tests or when caching is disabled
//
// Keys are hashed with SHA-256 before storage, so arbitrary strings
// (URLs, package names with scopes) are safe as keys.
package cache

import (
	"context"
	"time"
)

// Cache stores raw byte values under string keys with per-entry TTL.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the backend.
	Close() error
}
