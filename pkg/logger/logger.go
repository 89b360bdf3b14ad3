// Package logger builds the slog loggers used across the service.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a logger writing to stderr at the given level ("debug",
// "info", "warn", "error") and format ("text" or "json"). Unrecognized
// values fall back to info-level text.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit sink, for tests and redirection.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Component tags a child logger with the subsystem it serves, so one
// process-wide logger fans out to the engine, fetcher, catalog, and cache
// with a distinguishing attribute.
func Component(log *slog.Logger, name string) *slog.Logger {
	return log.With("component", name)
}

// Nop returns a logger that discards everything. Default for components
// constructed without an explicit logger.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a level string to slog.Level.
// Recognized values: "debug", "warn", "error". Everything else returns LevelInfo.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
