// Package httputil provides the HTTP client used by all data loaders.
//
// # Overview
//
// This package provides infrastructure shared by every component that
// talks to a remote service:
//
//   - [Client]: JSON-oriented HTTP client with response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Client] stores responses in a [cache.Cache] backend under a
// per-client namespace. The CLI uses a file backend so repeated runs
// against the same manifests and data URLs skip the network; the
// server typically uses Redis or memory.
//
// Usage:
//
//	client := httputil.NewClient(backend, "ems:", cache.ManifestTTL, nil)
//	var manifest Manifest
//	err := client.Cached(ctx, manifestURL, false, &manifest, func() error {
//	    return client.Get(ctx, manifestURL, &manifest)
//	})
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Non-transient failures (4xx, decode errors) return immediately.
// Rate-limited responses wait out the server's Retry-After hint before
// the next attempt.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Request timeout: 10 seconds
//   - Max retries: 3
//   - Base backoff: 1 second
package httputil
