package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Normalize hooks
	n := NoopNormalizeHooks{}
	n.OnStageStart(ctx, "parse")
	n.OnStageComplete(ctx, "parse", time.Second, nil)
	n.OnWarning(ctx, "widths set for a chart that resizes")

	// Loader hooks
	l := NoopLoaderHooks{}
	l.OnBatchStart(ctx, "elasticsearch", 3)
	l.OnBatchComplete(ctx, "elasticsearch", 3, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "ems")
	c.OnCacheMiss(ctx, "url")
	c.OnCacheSet(ctx, "url", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "vector.maps.elastic.co", "/v7.6/manifest")
	h.OnResponse(ctx, "GET", "vector.maps.elastic.co", "/v7.6/manifest", 200, time.Second)
	h.OnError(ctx, "GET", "vector.maps.elastic.co", "/v7.6/manifest", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Normalize().(NoopNormalizeHooks); !ok {
		t.Error("Normalize() should return NoopNormalizeHooks by default")
	}
	if _, ok := Loader().(NoopLoaderHooks); !ok {
		t.Error("Loader() should return NoopLoaderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customNormalize := &testNormalizeHooks{}
	SetNormalizeHooks(customNormalize)
	if Normalize() != customNormalize {
		t.Error("SetNormalizeHooks should set custom hooks")
	}

	customLoader := &testLoaderHooks{}
	SetLoaderHooks(customLoader)
	if Loader() != customLoader {
		t.Error("SetLoaderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Normalize().(NoopNormalizeHooks); !ok {
		t.Error("Reset() should restore NoopNormalizeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testNormalizeHooks{}
	SetNormalizeHooks(custom)

	// Setting nil should be ignored
	SetNormalizeHooks(nil)

	if Normalize() != custom {
		t.Error("SetNormalizeHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testNormalizeHooks struct{ NoopNormalizeHooks }
type testLoaderHooks struct{ NoopLoaderHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
