// Package logging builds the structured loggers used by the CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gtile/core/errs"
)

// Logger wraps slog.Logger with gtile-specific fields.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to w at level. json selects the JSON handler.
func New(w io.Writer, level slog.Level, json bool) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(h)}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithCommand tags every record with the subcommand name.
func (l *Logger) WithCommand(name string) *Logger {
	return &Logger{Logger: l.Logger.With("cmd", name)}
}

// WithIndex tags every record with the index path.
func (l *Logger) WithIndex(path string) *Logger {
	return &Logger{Logger: l.Logger.With("index", path)}
}

// ParseLevel maps debug|info|warn|error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errs.Configf("unknown log level %q (want debug|info|warn|error)", s)
}
