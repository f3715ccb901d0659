package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/movie-catalog/backend/internal/cache"
	"github.com/zhouzirui/movie-catalog/backend/internal/metrics"
	"github.com/zhouzirui/movie-catalog/backend/internal/model/movie"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrLookupFailed  = errors.New("movie lookup failed")
)

// MissPolicy decides what GetMovie does with an unknown identifier.
type MissPolicy string

const (
	// MissNotFound reports an unknown identifier as ErrMovieNotFound.
	MissNotFound MissPolicy = "not_found"
	// MissFail reports an unknown identifier as ErrLookupFailed, which the
	// HTTP layer turns into a 500 like an unguarded key lookup would.
	MissFail MissPolicy = "fail"
)

// ParseMissPolicy validates a policy name. An empty string selects MissNotFound.
func ParseMissPolicy(raw string) (MissPolicy, error) {
	switch MissPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MissNotFound:
		return MissNotFound, nil
	case MissFail:
		return MissFail, nil
	default:
		return "", fmt.Errorf("unknown miss policy %q (want %q or %q)", raw, MissNotFound, MissFail)
	}
}

// Options tune a Service. The zero value uses MissNotFound, no cache and no logging.
type Options struct {
	MissPolicy MissPolicy
	Cache      cache.Cache
	Logger     *zerolog.Logger
}

// Service answers catalog queries over a read-only store.
type Service struct {
	store  movie.Store
	policy MissPolicy
	cache  cache.Cache
	logger zerolog.Logger
}

// NewService binds the catalog service to a store.
func NewService(store movie.Store, opts Options) *Service {
	policy := opts.MissPolicy
	if policy == "" {
		policy = MissNotFound
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Service{
		store:  store,
		policy: policy,
		cache:  opts.Cache,
		logger: logger,
	}
}

// MissPolicy reports the configured policy.
func (s *Service) MissPolicy() MissPolicy {
	return s.policy
}

// Count returns the number of movies in the catalog.
func (s *Service) Count() int {
	return s.store.Len()
}

// ListMovies returns every movie as an id/title pair in catalog order.
func (s *Service) ListMovies(_ context.Context) ListResult {
	return ListResult{Movies: s.store.List()}
}

// GetMovie returns the full record stored under id.
func (s *Service) GetMovie(_ context.Context, id string) (DetailResult, error) {
	m, ok := s.store.FindByID(id)
	if !ok {
		metrics.CatalogLookupsTotal.WithLabelValues("miss").Inc()
		if s.policy == MissFail {
			return DetailResult{}, fmt.Errorf("%w: no movie with id %q", ErrLookupFailed, id)
		}
		return DetailResult{}, ErrMovieNotFound
	}
	metrics.CatalogLookupsTotal.WithLabelValues("hit").Inc()
	return DetailResult{Movie: m}, nil
}

// Execute runs a query and returns its result body.
func (s *Service) Execute(ctx context.Context, q Query) (any, error) {
	switch q := q.(type) {
	case ListQuery:
		return s.ListMovies(ctx), nil
	case GetQuery:
		return s.GetMovie(ctx, q.ID)
	default:
		return nil, fmt.Errorf("unsupported query type %T", q)
	}
}

// Render runs a query and returns its JSON encoding. Successful encodings
// are cached, so repeated queries return identical bytes.
func (s *Service) Render(ctx context.Context, q Query) ([]byte, error) {
	if q == nil {
		return nil, errors.New("nil query")
	}
	key := q.cacheKey()
	if s.cache != nil {
		if body, ok := s.cache.Get(ctx, key); ok {
			return body, nil
		}
	}

	result, err := s.Execute(ctx, q)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, body)
		s.logger.Debug().Str("key", key).Int("bytes", len(body)).Msg("cached rendered response")
	}
	return body, nil
}
