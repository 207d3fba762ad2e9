// Package logging configures the process-wide slog default for the
// evaluation CLI and hands out component-scoped loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init configures the global slog default. Format must be "text" or
// "json"; anything else renders as text. If w is nil, os.Stderr is used
// so artifact output on stdout stays machine-readable.
func Init(level slog.Level, format string, w ...io.Writer) {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Level maps the CLI verbose flag to a slog level.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New returns a logger scoped to one pipeline component (loader, merge,
// metrics, report, history, mcp).
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
