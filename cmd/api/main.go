package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/movie-catalog/backend/internal/cache"
	"github.com/zhouzirui/movie-catalog/backend/internal/config"
	"github.com/zhouzirui/movie-catalog/backend/internal/handler"
	"github.com/zhouzirui/movie-catalog/backend/internal/metrics"
	"github.com/zhouzirui/movie-catalog/backend/internal/model/movie"
	"github.com/zhouzirui/movie-catalog/backend/internal/service/catalog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the environment may already be populated.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := config.NewLogger(cfg.Log, os.Stdout)
	log.Logger = logger
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file loaded, using process environment only")
	}

	if cfg.Sentry.Enabled() {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to initialize Sentry, continuing without error reporting")
			cfg.Sentry.DSN = ""
		} else {
			defer sentry.Flush(2 * time.Second)
			logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
		}
	}

	seed := movie.Seed()
	store := movie.MustNewMemoryStore(seed)

	responses, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           cfg.Cache.TTL,
		Logger:        &logger,
		RedisAddress:  cfg.Cache.RedisAddress,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		Namespace:     movie.Fingerprint(seed),
		Group:         "responses",
	})
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.Cache.Provider).Msg("response cache unavailable, serving uncached")
		responses = nil
	} else {
		defer func() {
			if err := responses.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close response cache")
			}
		}()
	}

	catalogSvc := catalog.NewService(store, catalog.Options{
		MissPolicy: cfg.Catalog.MissPolicy,
		Cache:      responses,
		Logger:     &logger,
	})

	logger.Info().
		Int("movies", catalogSvc.Count()).
		Str("miss_policy", string(catalogSvc.MissPolicy())).
		Str("cache_provider", cfg.Cache.Provider).
		Msg("catalog loaded")

	router, err := handler.NewRouter(catalogSvc, handler.Options{
		Logger:        logger,
		AllowedOrigin: cfg.HTTP.AllowedOrigin,
		CacheControl:  cfg.HTTP.CacheControl,
		Gzip:          cfg.HTTP.Gzip,
		Sentry:        cfg.Sentry.Enabled(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build router")
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()
	}

	if err := startServer(ctx, logger, cfg.Server, router); err != nil {
		logger.Error().Err(err).Msg("server error")
		return
	}
	logger.Info().Msg("server stopped gracefully")
}

func startServer(ctx context.Context, logger zerolog.Logger, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("address", srv.Addr).Msg("movie catalog listening")
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
