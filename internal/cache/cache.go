// Package cache stores rendered catalog responses behind pluggable providers.
package cache

import "context"

// EvictCallback is called when an entry is evicted from the cache.
// Providers backed by an external server do not report evictions.
type EvictCallback func(key string, value []byte)

// Cache is a byte-oriented key-value cache.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte)

	// Close releases any resources held by the cache.
	Close() error
}
