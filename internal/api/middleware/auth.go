package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/futig/visa-interview/internal/pkg/logger"
	"github.com/futig/visa-interview/internal/pkg/response"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// UserIDHeader carries the caller identity set by the upstream auth gateway
const UserIDHeader = "X-User-ID"

type userIDKey struct{}

// Auth rejects requests without a valid caller identity
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			ctxzap.Warn(r.Context(), "unauthenticated request", zap.Bool("header_present", raw != ""))
			response.Error(w, http.StatusUnauthorized, "missing or invalid "+UserIDHeader+" header")
			return
		}

		userID := id.String()
		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		ctx = logger.AddFields(ctx, zap.String("user_id", userID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated caller, empty outside Auth
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// WithUserID stores userID the way Auth does
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}
