package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	// Miss before Set
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss before Set")
	}

	// Round trip
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != "value" {
		t.Errorf("Get = %q, %v; want value, true", data, hit)
	}

	// Non-positive TTL means no expiration
	if err := c.Set(ctx, "stale", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "stale"); !hit {
		t.Error("non-positive TTL should mean no expiration")
	}

	// Delete removes
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss after Delete")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy eviction on access, Len = %d", c.Len())
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss before Set")
	}

	// Round trip
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != "value" {
		t.Errorf("Get = %q, %v; want value, true", data, hit)
	}

	// Survives a new cache instance over the same directory
	c2, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if data, hit, _ := c2.Get(ctx, "key"); !hit || string(data) != "value" {
		t.Error("entry should survive across instances")
	}

	// Delete removes
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss after Delete")
	}

	// Deleting a missing key is fine
	if err := c.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected expired entry to miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Corrupt the entry on disk
	fc := c.(*FileCache)
	if err := os.WriteFile(fc.path("key"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("corrupt write: %v", err)
	}

	// Corrupt entry reads as a miss and is removed
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get on corrupt entry = hit %v, err %v; want miss, nil", hit, err)
	}
	if _, err := os.Stat(fc.path("key")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCachePathSharding(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	fc := c.(*FileCache)

	path := fc.path("some-key")
	rel, err := filepath.Rel(fc.Dir(), path)
	if err != nil {
		t.Fatalf("Rel error: %v", err)
	}
	dir, file := filepath.Split(rel)
	if len(filepath.Clean(dir)) != 2 {
		t.Errorf("expected 2-char shard dir, got %q", dir)
	}
	if filepath.Ext(file) != ".json" {
		t.Errorf("expected .json entry, got %q", file)
	}
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryCache()
	defer backend.Close()

	a := NewScoped(backend, "a:")
	b := NewScoped(backend, "b:")

	if err := a.Set(ctx, "key", []byte("from-a"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Scopes do not see each other
	if _, hit, _ := b.Get(ctx, "key"); hit {
		t.Error("scope b should not see scope a's entries")
	}
	if data, hit, _ := a.Get(ctx, "key"); !hit || string(data) != "from-a" {
		t.Error("scope a should see its own entry")
	}

	// The backend holds the prefixed key
	if _, hit, _ := backend.Get(ctx, "a:key"); !hit {
		t.Error("backend should hold the prefixed key")
	}

	// Closing a scope leaves the backend alone
	if err := a.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, hit, _ := backend.Get(ctx, "a:key"); !hit {
		t.Error("closing a scope should not drop backend entries")
	}
}

func TestScopedNilInner(t *testing.T) {
	c := NewScoped(nil, "prefix:")
	if err := c.Set(context.Background(), "key", []byte("x"), 0); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(context.Background(), "key"); hit {
		t.Error("nil inner should behave like NullCache")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

