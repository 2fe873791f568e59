package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Synthesizer turns a terminal outcome into the case's current recommendation
type Synthesizer struct {
	recommendations repository.RecommendationRepository
	events          *dispatcher
}

func newSynthesizer(recommendations repository.RecommendationRepository, events *dispatcher) *Synthesizer {
	return &Synthesizer{
		recommendations: recommendations,
		events:          events,
	}
}

// Synthesize completes the session and stores the new current recommendation.
// Earlier recommendations of the case are kept as history.
func (s *Synthesizer) Synthesize(ctx context.Context, in entity.SynthesisInput, at time.Time) (*entity.Recommendation, error) {
	rec := entity.Recommendation{
		ID:            uuid.New().String(),
		CaseID:        in.CaseID,
		VisaCode:      in.VisaCode,
		VisaName:      in.VisaName,
		Rationale:     in.Rationale,
		UserConfirmed: in.UserConfirmed,
		CreatedAt:     at,
	}
	if in.SessionID != "" {
		sessionID := in.SessionID
		rec.SessionID = &sessionID
	}

	saved, err := s.recommendations.SaveCompletion(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("save recommendation: %w", err)
	}

	source := "engine"
	if saved.UserConfirmed {
		source = "direct"
	}
	recommendationsCreated.WithLabelValues(source).Inc()
	sessionTransitions.WithLabelValues(string(entity.SessionStatusCompleted)).Inc()

	ctxzap.Info(ctx, "recommendation created",
		zap.String("recommendation_id", saved.ID),
		zap.String("visa_code", saved.VisaCode),
		zap.Bool("user_confirmed", saved.UserConfirmed),
	)

	s.events.publish(ctx, func(ctx context.Context, p EventPublisher) {
		p.SendRecommendationCreated(ctx, &entity.CallbackRecommendationData{
			CaseID:           saved.CaseID,
			SessionID:        saved.SessionID,
			RecommendationID: saved.ID,
			VisaCode:         saved.VisaCode,
			UserConfirmed:    saved.UserConfirmed,
		})
	})

	return saved, nil
}
