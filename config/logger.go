package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog.Logger writing to stdout, configured from GO_ENV and LOG_LEVEL.
func NewLogger() *slog.Logger {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	return newLogger(os.Stdout, env, os.Getenv("LOG_LEVEL"))
}

// newLogger uses a JSON handler in production and a text handler otherwise.
// level may be: debug, info, warn, error (default: info).
func newLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
