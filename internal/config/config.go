package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zhouzirui/movie-catalog/backend/internal/service/catalog"
)

// Config aggregates every setting of the service.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Catalog CatalogConfig
	Cache   CacheConfig
	Metrics MetricsConfig
	HTTP    HTTPConfig
	Sentry  SentryConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	catalogCfg, err := loadCatalogConfig()
	if err != nil {
		return nil, err
	}

	cacheCfg, err := loadCacheConfig()
	if err != nil {
		return nil, err
	}

	metricsCfg, err := loadMetricsConfig()
	if err != nil {
		return nil, err
	}

	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Log:     loadLogConfig(),
		Catalog: catalogCfg,
		Cache:   cacheCfg,
		Metrics: metricsCfg,
		HTTP:    httpCfg,
		Sentry:  loadSentryConfig(),
	}, nil
}

// ServerConfig describes the API listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" and "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value %q: %w", port, err)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig selects the log level and output format ("console" or "json").
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console")),
	}
}

// CatalogConfig holds the catalog behavior switches.
type CatalogConfig struct {
	MissPolicy catalog.MissPolicy
}

func loadCatalogConfig() (CatalogConfig, error) {
	raw := os.Getenv("CATALOG_MISS_POLICY")
	policy, err := catalog.ParseMissPolicy(raw)
	if err != nil {
		return CatalogConfig{}, fmt.Errorf("invalid CATALOG_MISS_POLICY value %q: %w", raw, err)
	}
	return CatalogConfig{MissPolicy: policy}, nil
}

// CacheConfig describes the rendered-response cache.
type CacheConfig struct {
	Provider      string
	Size          int
	TTL           time.Duration
	RedisAddress  string
	RedisPassword string
	RedisDB       int
}

func loadCacheConfig() (CacheConfig, error) {
	size := 128
	if override, err := parseOptionalIntEnv("CACHE_SIZE"); err != nil {
		return CacheConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return CacheConfig{}, fmt.Errorf("invalid CACHE_SIZE value %d: must be positive", *override)
		}
		size = *override
	}

	ttl, err := parseDurationEnv("CACHE_TTL", time.Hour)
	if err != nil {
		return CacheConfig{}, err
	}

	redisDB := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return CacheConfig{}, err
	} else if override != nil {
		redisDB = *override
	}

	return CacheConfig{
		Provider:      strings.ToLower(getEnvOrDefault("CACHE_PROVIDER", "memory")),
		Size:          size,
		TTL:           ttl,
		RedisAddress:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
	}, nil
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool
	Address string
	Port    int
}

func loadMetricsConfig() (MetricsConfig, error) {
	enabled, err := parseBoolEnv("METRICS_ENABLED", true)
	if err != nil {
		return MetricsConfig{}, err
	}

	port := 9090
	if override, err := parseOptionalIntEnv("METRICS_PORT"); err != nil {
		return MetricsConfig{}, err
	} else if override != nil {
		port = *override
	}

	return MetricsConfig{
		Enabled: enabled,
		Address: strings.TrimSpace(os.Getenv("METRICS_ADDRESS")),
		Port:    port,
	}, nil
}

// HTTPConfig holds response-level HTTP settings.
type HTTPConfig struct {
	AllowedOrigin string
	CacheControl  string
	Gzip          bool
}

func loadHTTPConfig() (HTTPConfig, error) {
	gzip, err := parseBoolEnv("GZIP_ENABLED", true)
	if err != nil {
		return HTTPConfig{}, err
	}

	cacheControl, ok := os.LookupEnv("HTTP_CACHE_CONTROL")
	if !ok {
		cacheControl = "public, max-age=300"
	}

	return HTTPConfig{
		AllowedOrigin: getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),
		CacheControl:  strings.TrimSpace(cacheControl),
		Gzip:          gzip,
	}, nil
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string
	Environment string
}

// Enabled reports whether a DSN was provided.
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

func loadSentryConfig() SentryConfig {
	return SentryConfig{
		DSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		Environment: getEnvOrDefault("SENTRY_ENVIRONMENT", "development"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}
