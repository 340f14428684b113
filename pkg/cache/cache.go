// Package cache provides pluggable cache backends for HTTP responses
// and other fetched artifacts.
//
// The normalizer fetches remote resources while resolving a
// specification: Elastic Maps Service manifests, vector layer files and
// arbitrary data URLs. Backends implement [Cache] so the CLI can keep
// results on disk between runs, the server can share them through
// Redis, and tests can run against memory or [NullCache].
package cache

import (
	"context"
	"time"
)

// Suggested TTLs per artifact class. Manifests are versioned upstream
// and change rarely; query results go stale quickly.
const (
	ManifestTTL = 24 * time.Hour
	DataTTL     = 5 * time.Minute
)

// Cache is a byte-oriented key/value store with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves the value stored under key. The second return
	// value reports whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
