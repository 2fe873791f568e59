package callback

import (
	"context"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector only logs events, used when delivery is disabled
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) SendSessionStarted(ctx context.Context, data *entity.CallbackSessionStartedData) {
	ctxzap.Debug(ctx, "callback disabled, dropping event",
		zap.String("event_type", string(entity.CallbackEventTypeSessionStarted)),
		zap.String("session_id", data.SessionID),
	)
}

func (m *MockConnector) SendRecommendationCreated(ctx context.Context, data *entity.CallbackRecommendationData) {
	ctxzap.Debug(ctx, "callback disabled, dropping event",
		zap.String("event_type", string(entity.CallbackEventTypeRecommendationCreated)),
		zap.String("recommendation_id", data.RecommendationID),
	)
}

func (m *MockConnector) SendCaseLocked(ctx context.Context, data *entity.CallbackCaseLockedData) {
	ctxzap.Debug(ctx, "callback disabled, dropping event",
		zap.String("event_type", string(entity.CallbackEventTypeCaseLocked)),
		zap.String("case_id", data.CaseID),
	)
}
