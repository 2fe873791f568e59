package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields adds fields to the logger in context and returns new context
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(fields...))
}

// WithAction names the operation being served, an API route or a bot command
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

func WithCase(ctx context.Context, caseID string) context.Context {
	return AddFields(ctx, zap.String("case_id", caseID))
}

func WithSession(ctx context.Context, sessionID string) context.Context {
	return AddFields(ctx, zap.String("session_id", sessionID))
}
