package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	defer c.Close()

	if val, ok := c.Get(ctx, "movies:list"); ok || val != nil {
		t.Fatalf("Expected miss, got %q", val)
	}

	c.Set(ctx, "movies:list", []byte(`{"movies":[]}`))
	val, ok := c.Get(ctx, "movies:list")
	if !ok {
		t.Fatal("Expected hit")
	}
	if string(val) != `{"movies":[]}` {
		t.Fatalf("Unexpected value %s", val)
	}
}

func TestMemoryCache_Eviction(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	c, err := New("memory", ProviderConfig{
		Size:    2,
		TTL:     time.Hour,
		OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "c", []byte("3"))

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("Expected eviction of 'a', got %v", evicted)
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("Evicted key 'a' should not be present")
	}
	if _, ok := c.Get(ctx, "c"); !ok {
		t.Fatal("Key 'c' should be present")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("Expected entry to expire")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set(ctx, "key", []byte("v1"))
	c.Set(ctx, "key", []byte("v2"))

	val, ok := c.Get(ctx, "key")
	if !ok || string(val) != "v2" {
		t.Fatalf("Expected v2, got %q (found=%v)", val, ok)
	}
}

func TestNoopCache_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c, err := New("none", ProviderConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set(ctx, "k", []byte("v"))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("Expected noop cache to miss")
	}
}
