package config

import (
	"io"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Unknown levels fall back to info and
// are reported once through the returned logger.
func NewLogger(cfg LogConfig, out io.Writer) zerolog.Logger {
	var writer io.Writer = out
	if cfg.Format != "json" {
		writer = zerolog.ConsoleWriter{Out: out}
	}

	level := zerolog.InfoLevel
	parsed, err := zerolog.ParseLevel(cfg.Level)
	invalid := err != nil || cfg.Level == ""
	if !invalid {
		level = parsed
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if invalid && cfg.Level != "" {
		logger.Warn().Str("invalid_level", cfg.Level).Msg("Invalid log level, using default 'info'")
	}
	return logger
}
