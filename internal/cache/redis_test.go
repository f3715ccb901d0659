package cache

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// These tests require a running Redis/Valkey server.
// Set REDIS_ADDRESS (e.g., "localhost:6379") to enable them.

func newTestRedisCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis test DB: %v", err)
	}
	_ = client.Close()

	c, err := New("redis", ProviderConfig{TTL: ttl, RedisAddress: addr, RedisDB: 15})
	if err != nil {
		t.Fatalf("New redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t, time.Minute)

	if _, ok := c.Get(ctx, "movies:get:123"); ok {
		t.Fatal("Expected miss on empty cache")
	}

	c.Set(ctx, "movies:get:123", []byte(`{"movie":{}}`))
	val, ok := c.Get(ctx, "movies:get:123")
	if !ok || string(val) != `{"movie":{}}` {
		t.Fatalf("Expected stored value, got %q (found=%v)", val, ok)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t, 100*time.Millisecond)

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(300 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("Expected entry to expire")
	}
}

func TestRedisCache_UnreachableServer(t *testing.T) {
	_, err := New("redis", ProviderConfig{RedisAddress: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("Expected error when Redis is unreachable")
	}
}

func TestRedisCache_DegradesWhenServerDown(t *testing.T) {
	var logs bytes.Buffer
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	c := &redisCache{
		client:  client,
		ttl:     time.Minute,
		prefix:  keyPrefix("test"),
		breaker: newBreaker(2, time.Minute),
		logger:  zerolog.New(&logs).Level(zerolog.DebugLevel),
	}
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	c.Set(ctx, "movies:list", []byte(`{"movies":[]}`))
	if val, ok := c.Get(ctx, "movies:list"); ok || val != nil {
		t.Fatalf("Expected miss while Redis is down, got %q (found=%v)", val, ok)
	}
	if strings.Contains(logs.String(), "circuit open") {
		t.Fatal("Expected breaker to stay closed below the failure threshold")
	}
	if !strings.Contains(logs.String(), "Redis cache operation failed") {
		t.Fatalf("Expected failures to be logged, got %s", logs.String())
	}

	logs.Reset()
	if val, ok := c.Get(ctx, "movies:list"); ok || val != nil {
		t.Fatalf("Expected miss with open breaker, got %q (found=%v)", val, ok)
	}
	c.Set(ctx, "movies:list", []byte(`{"movies":[]}`))
	if got := strings.Count(logs.String(), "Redis cache circuit open, skipping"); got != 2 {
		t.Fatalf("Expected 2 skipped operations, got %d in %s", got, logs.String())
	}
	if !c.breaker.IsOpen() {
		t.Fatal("Expected breaker to be open")
	}
}

func TestKeyPrefix(t *testing.T) {
	if got := keyPrefix(""); got != "moviecache:" {
		t.Fatalf("Unexpected default prefix %q", got)
	}
	if got := keyPrefix("3f2a9c"); got != "moviecache:3f2a9c:" {
		t.Fatalf("Unexpected namespaced prefix %q", got)
	}
}
