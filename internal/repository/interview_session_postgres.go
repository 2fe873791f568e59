package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository/sqlc"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SessionRepository defines the interface for interview session persistence
type SessionRepository interface {
	// ActivateSession makes session the active one for its case if the case still
	// points at expectedActiveID. The previous active session becomes superseded.
	// A caller that loses the race gets its session stored as superseded and
	// entity.ErrStartRaceLost; a locked case yields entity.ErrCaseLocked.
	ActivateSession(ctx context.Context, session entity.InterviewSession, expectedActiveID *string) (
		*entity.InterviewSession, []string, error,
	)
	GetSessionByID(ctx context.Context, id string) (*entity.InterviewSession, error)
	// TransitionStatus moves an active session to a terminal status
	TransitionStatus(ctx context.Context, id string, status entity.SessionStatus, at time.Time) (*entity.InterviewSession, error)
	ListSessionsByCase(ctx context.Context, caseID string) ([]*entity.InterviewSession, error)
}

var _ SessionRepository = &InterviewSessionPostgres{}

// InterviewSessionPostgres implements SessionRepository using PostgreSQL
type InterviewSessionPostgres struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewInterviewSessionPostgres(db *pgxpool.Pool) *InterviewSessionPostgres {
	return &InterviewSessionPostgres{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *InterviewSessionPostgres) ActivateSession(
	ctx context.Context, session entity.InterviewSession, expectedActiveID *string,
) (*entity.InterviewSession, []string, error) {
	sessionID, err := parseUUID(session.ID, "session")
	if err != nil {
		return nil, nil, err
	}
	caseID, err := parseUUID(session.CaseID, "case")
	if err != nil {
		return nil, nil, err
	}
	userID, err := parseUUID(session.UserID, "user")
	if err != nil {
		return nil, nil, err
	}
	expected, err := parseOptionalUUID(expectedActiveID, "session")
	if err != nil {
		return nil, nil, err
	}

	startedAt := toTimestamptz(session.StartedAt)
	var (
		created    *entity.InterviewSession
		superseded []string
		raceLost   bool
	)

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		q := r.queries.WithTx(tx)
		created, superseded, raceLost = nil, nil, false

		swapped, err := q.SwapActiveSession(ctx, sqlc.SwapActiveSessionParams{
			NewSessionID:      sessionID,
			Now:               startedAt,
			ID:                caseID,
			ExpectedSessionID: expected,
		})
		if err != nil {
			return fmt.Errorf("swap active session: %w", err)
		}

		if swapped == 0 {
			dbCase, err := q.GetCaseByID(ctx, caseID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return entity.ErrCaseNotFound
				}
				return fmt.Errorf("get case: %w", err)
			}
			if dbCase.InterviewLocked {
				return entity.ErrCaseLocked
			}

			// Lost the compare-and-set: keep the attempt for audit, never active
			dbSession, err := q.CreateInterviewSession(ctx, sqlc.CreateInterviewSessionParams{
				ID:         sessionID,
				CaseID:     caseID,
				UserID:     userID,
				Status:     string(entity.SessionStatusSuperseded),
				StartedAt:  startedAt,
				FinishedAt: startedAt,
			})
			if err != nil {
				return fmt.Errorf("record superseded session: %w", err)
			}
			created = toEntitySession(&dbSession)
			raceLost = true
			return nil
		}

		ids, err := q.SupersedeActiveSessions(ctx, sqlc.SupersedeActiveSessionsParams{
			CaseID:     caseID,
			FinishedAt: startedAt,
		})
		if err != nil {
			return fmt.Errorf("supersede active sessions: %w", err)
		}
		for _, id := range ids {
			superseded = append(superseded, uuidString(id))
		}

		dbSession, err := q.CreateInterviewSession(ctx, sqlc.CreateInterviewSessionParams{
			ID:        sessionID,
			CaseID:    caseID,
			UserID:    userID,
			Status:    string(entity.SessionStatusActive),
			StartedAt: startedAt,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return entity.ErrStartRaceLost
			}
			return fmt.Errorf("create session: %w", err)
		}
		created = toEntitySession(&dbSession)

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if raceLost {
		ctxzap.Warn(ctx, "interview start lost the active session race",
			zap.String("case_id", session.CaseID),
			zap.String("session_id", session.ID),
		)
		return created, nil, entity.ErrStartRaceLost
	}

	return created, superseded, nil
}

func (r *InterviewSessionPostgres) GetSessionByID(ctx context.Context, id string) (*entity.InterviewSession, error) {
	sessionID, err := parseUUID(id, "session")
	if err != nil {
		return nil, err
	}

	dbSession, err := r.queries.GetInterviewSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return toEntitySession(&dbSession), nil
}

func (r *InterviewSessionPostgres) TransitionStatus(
	ctx context.Context, id string, status entity.SessionStatus, at time.Time,
) (*entity.InterviewSession, error) {
	sessionID, err := parseUUID(id, "session")
	if err != nil {
		return nil, err
	}

	dbSession, err := r.queries.TransitionInterviewSession(ctx, sqlc.TransitionInterviewSessionParams{
		ID:         sessionID,
		Status:     string(status),
		FinishedAt: toTimestamptz(at),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notActiveError(ctx, sessionID)
		}
		return nil, fmt.Errorf("transition session to %s: %w", status, err)
	}

	return toEntitySession(&dbSession), nil
}

func (r *InterviewSessionPostgres) ListSessionsByCase(ctx context.Context, caseID string) ([]*entity.InterviewSession, error) {
	id, err := parseUUID(caseID, "case")
	if err != nil {
		return nil, err
	}

	dbSessions, err := r.queries.ListInterviewSessionsByCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return toEntitySessions(dbSessions), nil
}

// notActiveError explains why a conditional update on an active session matched nothing
func (r *InterviewSessionPostgres) notActiveError(ctx context.Context, id pgtype.UUID) error {
	dbSession, err := r.queries.GetInterviewSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ErrSessionNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}
	return statusError(entity.SessionStatus(dbSession.Status))
}

func statusError(status entity.SessionStatus) error {
	switch status {
	case entity.SessionStatusCompleted:
		return entity.ErrSessionCompleted
	case entity.SessionStatusExpired:
		return entity.ErrSessionExpired
	default:
		return entity.ErrSessionNotActive
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
