package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

type memoryCache struct {
	inner *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = func(key string, value []byte) {
			cfg.OnEvict(key, value)
		}
	}
	return &memoryCache{
		inner: lru.NewLRU[string, []byte](cfg.Size, onEvict, cfg.TTL),
	}, nil
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.inner.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.inner.Add(key, value)
}

func (m *memoryCache) Close() error {
	return nil
}
