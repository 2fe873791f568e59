package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository/sqlc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecommendationRepository defines the interface for recommendation persistence
type RecommendationRepository interface {
	// SaveCompletion completes the recommendation's session, demotes the case's
	// current recommendation and stores rec as the new current one, atomically.
	SaveCompletion(ctx context.Context, rec entity.Recommendation) (*entity.Recommendation, error)
	GetCurrentRecommendation(ctx context.Context, caseID string) (*entity.Recommendation, error)
	ListRecommendations(ctx context.Context, caseID string) ([]*entity.Recommendation, error)
}

var _ RecommendationRepository = &RecommendationPostgres{}

// RecommendationPostgres implements RecommendationRepository using PostgreSQL
type RecommendationPostgres struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewRecommendationPostgres(db *pgxpool.Pool) *RecommendationPostgres {
	return &RecommendationPostgres{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *RecommendationPostgres) SaveCompletion(ctx context.Context, rec entity.Recommendation) (*entity.Recommendation, error) {
	recID, err := parseUUID(rec.ID, "recommendation")
	if err != nil {
		return nil, err
	}
	caseID, err := parseUUID(rec.CaseID, "case")
	if err != nil {
		return nil, err
	}
	sessionID, err := parseOptionalUUID(rec.SessionID, "session")
	if err != nil {
		return nil, err
	}

	createdAt := toTimestamptz(rec.CreatedAt)
	var saved *entity.Recommendation

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		q := r.queries.WithTx(tx)

		if sessionID.Valid {
			_, err := q.TransitionInterviewSession(ctx, sqlc.TransitionInterviewSessionParams{
				ID:         sessionID,
				Status:     string(entity.SessionStatusCompleted),
				FinishedAt: createdAt,
			})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					dbSession, getErr := q.GetInterviewSessionByID(ctx, sessionID)
					if getErr != nil {
						if errors.Is(getErr, pgx.ErrNoRows) {
							return entity.ErrSessionNotFound
						}
						return fmt.Errorf("get session: %w", getErr)
					}
					return statusError(entity.SessionStatus(dbSession.Status))
				}
				return fmt.Errorf("complete session: %w", err)
			}
		}

		if err := q.DemoteCurrentRecommendation(ctx, caseID); err != nil {
			return fmt.Errorf("demote current recommendation: %w", err)
		}

		dbRec, err := q.CreateRecommendation(ctx, sqlc.CreateRecommendationParams{
			ID:            recID,
			CaseID:        caseID,
			SessionID:     sessionID,
			VisaCode:      rec.VisaCode,
			VisaName:      rec.VisaName,
			Rationale:     rec.Rationale,
			UserConfirmed: rec.UserConfirmed,
			CreatedAt:     createdAt,
		})
		if err != nil {
			return fmt.Errorf("create recommendation: %w", err)
		}

		if err := q.SetCurrentRecommendation(ctx, sqlc.SetCurrentRecommendationParams{
			ID:                      caseID,
			CurrentRecommendationID: recID,
			LastActivityAt:          createdAt,
		}); err != nil {
			return fmt.Errorf("set current recommendation: %w", err)
		}

		saved = toEntityRecommendation(&dbRec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (r *RecommendationPostgres) GetCurrentRecommendation(ctx context.Context, caseID string) (*entity.Recommendation, error) {
	id, err := parseUUID(caseID, "case")
	if err != nil {
		return nil, err
	}

	dbRec, err := r.queries.GetCurrentRecommendation(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrRecommendationNotFound
		}
		return nil, fmt.Errorf("get current recommendation: %w", err)
	}

	return toEntityRecommendation(&dbRec), nil
}

func (r *RecommendationPostgres) ListRecommendations(ctx context.Context, caseID string) ([]*entity.Recommendation, error) {
	id, err := parseUUID(caseID, "case")
	if err != nil {
		return nil, err
	}

	dbRecs, err := r.queries.ListRecommendationsByCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	recs := make([]*entity.Recommendation, 0, len(dbRecs))
	for i := range dbRecs {
		recs = append(recs, toEntityRecommendation(&dbRecs[i]))
	}

	return recs, nil
}
