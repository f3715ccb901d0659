package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// defaultKeyPrefix namespaces all cache keys in Redis. ProviderConfig.Namespace
	// is appended so bodies rendered from a different catalog are never served.
	defaultKeyPrefix = "moviecache:"

	breakerFailureThreshold = 5
	breakerDelay            = 30 * time.Second
	redisOpTimeout          = 500 * time.Millisecond
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache stores entries as plain string keys with a TTL. Redis handles
// expiry and eviction, so OnEvict is never called.
//
// All operations go through a circuit breaker. Failures, including an open
// breaker, are logged and degrade to a miss or a dropped write so the catalog
// keeps serving when Redis is unavailable.
type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	prefix  string
	breaker circuitbreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisCache{
		client:  client,
		ttl:     cfg.TTL,
		prefix:  keyPrefix(cfg.Namespace),
		breaker: newBreaker(breakerFailureThreshold, breakerDelay),
		logger:  cfg.logger(),
	}, nil
}

func keyPrefix(namespace string) string {
	if namespace == "" {
		return defaultKeyPrefix
	}
	return defaultKeyPrefix + namespace + ":"
}

func newBreaker(threshold uint, delay time.Duration) circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(threshold).
		WithDelay(delay).
		Build()
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var (
		val   []byte
		found bool
	)
	err := failsafe.With[any](r.breaker).Run(func() error {
		opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()

		b, err := r.client.Get(opCtx, r.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		val, found = b, true
		return nil
	})
	if err != nil {
		r.logError(err, "get", key)
		return nil, false
	}
	return val, found
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) {
	err := failsafe.With[any](r.breaker).Run(func() error {
		opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		return r.client.Set(opCtx, r.prefix+key, value, r.ttl).Err()
	})
	if err != nil {
		r.logError(err, "set", key)
	}
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

func (r *redisCache) logError(err error, op, key string) {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		r.logger.Debug().Str("op", op).Str("key", key).Msg("Redis cache circuit open, skipping")
		return
	}
	r.logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("Redis cache operation failed")
}
