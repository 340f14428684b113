package cache

import (
	"context"
	"time"
)

// Scoped wraps a backend with a key prefix so independent consumers can
// share one backend without colliding. The loaders each get their own
// scope ("ems:", "url:", ...) over the process-wide cache.
//
// Example usage:
//
//	backend := NewMemoryCache()
//	manifests := NewScoped(backend, "ems:")
//	fetches := NewScoped(backend, "url:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a prefixed view over inner. A nil inner falls back
// to [NullCache].
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Get retrieves a value through the scope prefix.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a value through the scope prefix.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes a value through the scope prefix.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close is a no-op. The shared backend is owned by whoever created it,
// not by the scoped views.
func (s *Scoped) Close() error {
	return nil
}

// Ensure Scoped implements Cache.
var _ Cache = (*Scoped)(nil)
