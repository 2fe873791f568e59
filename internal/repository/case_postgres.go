package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository/sqlc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository defines the interface for the case lock gate and case lookups
type CaseRepository interface {
	CreateCase(ctx context.Context, c entity.Case) (*entity.Case, error)
	GetCase(ctx context.Context, id string) (*entity.Case, error)
	IsLocked(ctx context.Context, id string) (bool, error)
	// LockCase sets the interview lock and stamps the current recommendation.
	// Locking an already locked case succeeds.
	LockCase(ctx context.Context, id string, at time.Time) (*entity.Case, error)
}

var _ CaseRepository = &CasePostgres{}

// CasePostgres implements CaseRepository using PostgreSQL
type CasePostgres struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewCasePostgres(db *pgxpool.Pool) *CasePostgres {
	return &CasePostgres{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *CasePostgres) CreateCase(ctx context.Context, c entity.Case) (*entity.Case, error) {
	caseID, err := parseUUID(c.ID, "case")
	if err != nil {
		return nil, err
	}
	userID, err := parseUUID(c.UserID, "user")
	if err != nil {
		return nil, err
	}

	dbCase, err := r.queries.CreateCase(ctx, sqlc.CreateCaseParams{
		ID:              caseID,
		UserID:          userID,
		InterviewLocked: c.InterviewLocked,
		LastActivityAt:  toTimestamptz(c.LastActivityAt),
	})
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}

	return toEntityCase(&dbCase), nil
}

func (r *CasePostgres) GetCase(ctx context.Context, id string) (*entity.Case, error) {
	caseID, err := parseUUID(id, "case")
	if err != nil {
		return nil, err
	}

	dbCase, err := r.queries.GetCaseByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}

	return toEntityCase(&dbCase), nil
}

func (r *CasePostgres) IsLocked(ctx context.Context, id string) (bool, error) {
	c, err := r.GetCase(ctx, id)
	if err != nil {
		return false, err
	}
	return c.InterviewLocked, nil
}

func (r *CasePostgres) LockCase(ctx context.Context, id string, at time.Time) (*entity.Case, error) {
	caseID, err := parseUUID(id, "case")
	if err != nil {
		return nil, err
	}

	var locked *entity.Case
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		q := r.queries.WithTx(tx)

		dbCase, err := q.LockCase(ctx, sqlc.LockCaseParams{
			ID:             caseID,
			LastActivityAt: toTimestamptz(at),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return entity.ErrCaseNotFound
			}
			return fmt.Errorf("lock case: %w", err)
		}

		if err := q.LockCurrentRecommendation(ctx, sqlc.LockCurrentRecommendationParams{
			CaseID:   caseID,
			LockedAt: toTimestamptz(at),
		}); err != nil {
			return fmt.Errorf("lock current recommendation: %w", err)
		}

		locked = toEntityCase(&dbCase)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return locked, nil
}
