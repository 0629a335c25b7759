package logger

import (
	"context"
	"log/slog"
)

// contextKey is an unexported type for context keys defined by this package,
// preventing collisions with keys defined elsewhere.
type contextKey int

// loggerKey is the context key under which the request-scoped logger travels.
const loggerKey contextKey = iota

// WithContext returns a copy of ctx carrying the given logger. Handlers and
// middleware use this to attach request-scoped attributes (trace ID, user ID)
// once so every downstream log line includes them.
func WithContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored in ctx, or the process default logger
// when none has been attached. Callers can always use the returned logger
// without a nil check.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return slog.Default()
}

// FromContextOrDefault returns the logger stored in ctx, falling back to the
// given default instead of the process logger. Components with their own
// configured logger use this so request-scoped attributes win when present
// but component attributes survive when they are not.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
