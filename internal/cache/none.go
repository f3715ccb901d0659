package cache

import "context"

func init() {
	Register("none", func(ProviderConfig) (Cache, error) { return noopCache{}, nil })
}

// noopCache never stores anything; every Get is a miss.
type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noopCache) Set(context.Context, string, []byte)        {}
func (noopCache) Close() error                               { return nil }
