package cache

import "context"

// instrumentedCache records hit and miss counters for its group.
type instrumentedCache struct {
	inner Cache
	group string
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, ok := c.inner.Get(ctx, key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return val, ok
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value []byte) {
	c.inner.Set(ctx, key, value)
}

func (c *instrumentedCache) Close() error {
	return c.inner.Close()
}
