// Package logging builds the process-wide structured logger on top of
// [log/slog] and threads request-scoped loggers through contexts via
// [WithLogger] / [FromContext].
//
// The handler is selected once at startup, either from the environment
// ([New]) or from explicit settings ([NewWithOptions]):
//
//	LOG_LEVEL  = debug | info | warn | error  (default: info)
//	LOG_FORMAT = json | text                  (default: json)
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls handler construction for [NewWithOptions].
type Options struct {
	// Level is the minimum severity: debug, info, warn or error.
	// Empty or unknown values mean info.
	Level string

	// Format selects the handler encoding: "json" or "text".
	// Anything other than "text" means json.
	Format string

	// Output is where log records are written. Defaults to os.Stderr.
	Output io.Writer
}

// New constructs a [*slog.Logger] from the LOG_LEVEL and LOG_FORMAT
// environment variables. JSON output on stderr is the default so logs
// stay machine-parseable when the binary runs under a supervisor.
func New() *slog.Logger {
	return NewWithOptions(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
}

// NewWithOptions constructs a [*slog.Logger] from explicit settings.
func NewWithOptions(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if strings.ToLower(opts.Format) == "text" {
		handler = slog.NewTextHandler(out, hopts)
	} else {
		handler = slog.NewJSONHandler(out, hopts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record. Intended for tests
// and for components that require a non-nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// contextKey is an unexported type for context keys in this package.
type contextKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the [*slog.Logger] stored in ctx. If no logger is
// present it returns [slog.Default] so callers never need to nil-check.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// parseLevel converts a string to a [slog.Level], defaulting to Info.
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
