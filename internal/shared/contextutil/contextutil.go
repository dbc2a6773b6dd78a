// Package contextutil carries request metadata (request id, acting user and a
// request-scoped logger) through context.Context.
package contextutil

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	actorKey
	loggerKey
)

// Actor is the authenticated caller. Role is the token's role claim and is
// informational only; authorization always goes through RBAC.
type Actor struct {
	UserID string
	Role   string
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the caller and whether one was set.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok && a.UserID != ""
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request-scoped logger, else defaultLogger, else a
// no-op logger.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return zap.NewNop()
}

// LogFields returns the request_id and user_id fields present in ctx.
func LogFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if rid := GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if a, ok := ActorFrom(ctx); ok {
		fields = append(fields, zap.String("user_id", a.UserID))
	}
	return fields
}
