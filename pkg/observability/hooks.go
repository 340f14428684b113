// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about normalization stages, data loading, cache operations,
// and outgoing HTTP calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetNormalizeHooks(&myNormalizeHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Normalize().OnStageStart(ctx, "resolve_data")
//	// ... resolve data ...
//	observability.Normalize().OnStageComplete(ctx, "resolve_data", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Normalize Hooks
// =============================================================================

// NormalizeHooks receives events from the normalization pipeline.
type NormalizeHooks interface {
	// Stage events. Stage names are stable identifiers such as
	// "parse", "resolve_data" or "compile_lite".
	OnStageStart(ctx context.Context, stage string)
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)

	// OnWarning records a non-fatal finding surfaced to the user.
	OnWarning(ctx context.Context, message string)
}

// =============================================================================
// Loader Hooks
// =============================================================================

// LoaderHooks receives events from data loader batches.
type LoaderHooks interface {
	// OnBatchStart records the start of a loader batch.
	OnBatchStart(ctx context.Context, loader string, nodes int)

	// OnBatchComplete records a finished loader batch.
	OnBatchComplete(ctx context.Context, loader string, nodes int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopNormalizeHooks is a no-op implementation of NormalizeHooks.
type NoopNormalizeHooks struct{}

func (NoopNormalizeHooks) OnStageStart(context.Context, string)                          {}
func (NoopNormalizeHooks) OnStageComplete(context.Context, string, time.Duration, error) {}
func (NoopNormalizeHooks) OnWarning(context.Context, string)                             {}

// NoopLoaderHooks is a no-op implementation of LoaderHooks.
type NoopLoaderHooks struct{}

func (NoopLoaderHooks) OnBatchStart(context.Context, string, int)                          {}
func (NoopLoaderHooks) OnBatchComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	normalizeHooks NormalizeHooks = NoopNormalizeHooks{}
	loaderHooks    LoaderHooks    = NoopLoaderHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetNormalizeHooks registers custom normalization hooks.
// This should be called once at application startup before any normalization.
func SetNormalizeHooks(h NormalizeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		normalizeHooks = h
	}
}

// SetLoaderHooks registers custom loader hooks.
// This should be called once at application startup before any data loading.
func SetLoaderHooks(h LoaderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		loaderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Normalize returns the registered normalization hooks.
func Normalize() NormalizeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return normalizeHooks
}

// Loader returns the registered loader hooks.
func Loader() LoaderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return loaderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	normalizeHooks = NoopNormalizeHooks{}
	loaderHooks = NoopLoaderHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
