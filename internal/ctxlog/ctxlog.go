// Package ctxlog carries the engine's structured logger inside a
// context.Context, so every component logs through the logger the
// application configured.
package ctxlog

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger attached to ctx. It panics when none is
// attached.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok || logger == nil {
		panic("ctxlog: no logger in context")
	}
	return logger
}

// With returns a context whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}

// Component tags the logger of ctx with the name of the component logging.
func Component(ctx context.Context, name string) context.Context {
	return With(ctx, "component", name)
}
