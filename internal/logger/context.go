package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// nop is returned when a context carries no logger, so pipeline code can log
// unconditionally without nil checks.
var nop = zap.NewNop()

// ContextWithLogger stores a request-scoped logger in the context. The HTTP
// middleware puts one here with the request id attached; the ingest CLI puts
// the process logger.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts the logger stored by ContextWithLogger. Contexts
// without one get a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return nop
}
