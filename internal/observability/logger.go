// Package observability constructs the diagnostic logger. All logging
// goes to stderr so stdout stays clean for the reply body.
package observability

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/masoncl/review-reply/internal/config"
)

// NewLogger builds a zerolog logger from the logging configuration.
// Disabled logging yields a no-op logger rather than nil.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	if !cfg.Enabled {
		return zerolog.Nop()
	}

	if cfg.Format == "human" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	return zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
