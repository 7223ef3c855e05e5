// Package logging builds the slog loggers used by the escaper service and
// CLI.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/vango-dev/escaper/internal/config"
)

// NewLogger creates a structured logger writing text or JSON to w. Unknown
// levels fall back to info; a nil w means stderr.
func NewLogger(format, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// FromConfig creates the logger described by cfg.
func FromConfig(cfg config.LogConfig, w io.Writer) *slog.Logger {
	return NewLogger(cfg.Format, cfg.Level, w)
}

// WithOp returns a logger tagged with an escaping operation name.
func WithOp(logger *slog.Logger, op string) *slog.Logger {
	return logger.With("op", op)
}
