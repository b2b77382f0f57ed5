package cache

import (
	"context"
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

	if err := c.Set(ctx, "layout:abc", []byte("diagram"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "diagram" {
		t.Errorf("Get = %q, want %q", data, "diagram")
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	if err := c.Set(ctx, "tree:x", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, hit, _ := c.Get(ctx, "tree:x"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "artifact:key", []byte("svg bytes"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "artifact:key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "svg bytes" {
		t.Errorf("Get = %q, want %q", data, "svg bytes")
	}

	// Expired entries are removed on read
	if err := c.Set(ctx, "artifact:old", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "artifact:old"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "artifact:key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "artifact:absent"); err != nil {
		t.Errorf("Delete of absent key should not error: %v", err)
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

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// TreeKey should include the input format
	tk1 := k.TreeKey("inhash", TreeKeyOpts{Format: "json"})
	tk2 := k.TreeKey("inhash", TreeKeyOpts{Format: "yaml"})
	if tk1 == tk2 {
		t.Error("Different TreeKeyOpts should produce different keys")
	}

	// LayoutKey should include the expanded-set snapshot
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Expanded: []string{"a"}, LevelGap: 240})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Expanded: []string{"a", "b"}, LevelGap: 240})
	if lk1 == lk2 {
		t.Error("Different expanded sets should produce different keys")
	}

	// ...and every positioning option
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{Expanded: []string{"a"}, LevelGap: 120})
	if lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Style: "simple"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Style: "simple"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}

	// Keys carry their stage prefix
	if keyType(lk1) != "layout" {
		t.Errorf("keyType = %q, want layout", keyType(lk1))
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "doc:42:")

	// All keys should be prefixed
	key := scoped.TreeKey("inhash", TreeKeyOpts{Format: "json"})
	if len(key) < 7 || key[:7] != "doc:42:" {
		t.Errorf("ScopedKeyer TreeKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	want := "prefix:" + NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if key != want {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
