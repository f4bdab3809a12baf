// Package logger configures the process-wide slog logger and carries
// request-scoped attributes through context.
package logger

import (
	"context"
	"log/slog"
	"os"
)

type requestIDKey struct{}

// Setup installs the default slog logger. Unknown levels fall back to info,
// unknown formats to text.
func Setup(level, format string) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// WithRequestID stores a request ID in ctx for FromContext to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// FromContext returns the default logger, tagged with the request ID from
// ctx when one is present.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		l = l.With("request_id", id)
	}
	return l
}

// WithComponent returns the default logger tagged with a component name.
func WithComponent(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
