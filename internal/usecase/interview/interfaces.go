package interview

import (
	"context"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/pkg/formatter"
)

// Narrower derives narrowing state from an answer history
type Narrower interface {
	Compute(answers map[string]string) *entity.NarrowingState
	Resolve(state *entity.NarrowingState) *entity.Outcome
	Direct(code string) (*entity.Outcome, error)
}

// EventPublisher delivers interview events to downstream systems.
// Implementations are best effort and must not fail the calling operation.
type EventPublisher interface {
	SendSessionStarted(ctx context.Context, data *entity.CallbackSessionStartedData)
	SendRecommendationCreated(ctx context.Context, data *entity.CallbackRecommendationData)
	SendCaseLocked(ctx context.Context, data *entity.CallbackCaseLockedData)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
