package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/futig/visa-interview/internal/entity"
	pkgRetry "github.com/futig/visa-interview/internal/pkg/retry"
	"github.com/futig/visa-interview/internal/repository/sqlc"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AnswerRepository defines the interface for the per-session answer log
type AnswerRepository interface {
	// PutAnswer inserts the answer under the next step number of its session, or
	// overwrites the value of an existing answer for the same key keeping its step.
	// The session must be active.
	PutAnswer(ctx context.Context, answer entity.Answer) (*entity.Answer, error)
	ListAnswers(ctx context.Context, sessionID string) ([]*entity.Answer, error)
	CountDistinctKeys(ctx context.Context, sessionID string) (int, error)
	DeleteAnswers(ctx context.Context, sessionID string) error
}

var _ AnswerRepository = &AnswerPostgres{}

var errAnswerInsertRace = errors.New("answer inserted concurrently")

// AnswerPostgres implements AnswerRepository using PostgreSQL
type AnswerPostgres struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
	retry   pkgRetry.RetryConfig
}

func NewAnswerPostgres(db *pgxpool.Pool, retryCfg pkgRetry.RetryConfig) *AnswerPostgres {
	return &AnswerPostgres{
		db:      db,
		queries: sqlc.New(db),
		retry:   retryCfg,
	}
}

func (r *AnswerPostgres) PutAnswer(ctx context.Context, answer entity.Answer) (*entity.Answer, error) {
	sessionID, err := parseUUID(answer.SessionID, "session")
	if err != nil {
		return nil, err
	}

	var stored *entity.Answer
	opts := append(r.retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryableTxError),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Debug(ctx, "retrying answer upsert",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	err = retry.Do(func() error {
		return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
			q := r.queries.WithTx(tx)

			// Row lock serializes writers of the same session
			dbSession, err := q.AcquireInterviewSession(ctx, sessionID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return entity.ErrSessionNotFound
				}
				return fmt.Errorf("acquire session: %w", err)
			}
			if status := entity.SessionStatus(dbSession.Status); status != entity.SessionStatusActive {
				return statusError(status)
			}

			updated, err := q.UpdateAnswerValue(ctx, sqlc.UpdateAnswerValueParams{
				SessionID:   sessionID,
				QuestionKey: answer.QuestionKey,
				AnswerValue: answer.AnswerValue,
				AnsweredAt:  toTimestamptz(answer.AnsweredAt),
			})
			if err == nil {
				stored = toEntityAnswer(&updated)
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("update answer: %w", err)
			}

			step, err := q.NextAnswerStep(ctx, sessionID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return entity.ErrSessionNotActive
				}
				return fmt.Errorf("next answer step: %w", err)
			}

			inserted, err := q.InsertAnswer(ctx, sqlc.InsertAnswerParams{
				SessionID:   sessionID,
				QuestionKey: answer.QuestionKey,
				AnswerValue: answer.AnswerValue,
				StepNumber:  step,
				AnsweredAt:  toTimestamptz(answer.AnsweredAt),
			})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					// rolled back with the step bump, the retry takes the update path
					return errAnswerInsertRace
				}
				return fmt.Errorf("insert answer: %w", err)
			}

			stored = toEntityAnswer(&inserted)
			return nil
		})
	}, opts...)
	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (r *AnswerPostgres) ListAnswers(ctx context.Context, sessionID string) ([]*entity.Answer, error) {
	id, err := parseUUID(sessionID, "session")
	if err != nil {
		return nil, err
	}

	dbAnswers, err := r.queries.ListAnswers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	answers := make([]*entity.Answer, 0, len(dbAnswers))
	for i := range dbAnswers {
		answers = append(answers, toEntityAnswer(&dbAnswers[i]))
	}

	return answers, nil
}

func (r *AnswerPostgres) CountDistinctKeys(ctx context.Context, sessionID string) (int, error) {
	id, err := parseUUID(sessionID, "session")
	if err != nil {
		return 0, err
	}

	count, err := r.queries.CountDistinctAnswerKeys(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}

	return int(count), nil
}

func (r *AnswerPostgres) DeleteAnswers(ctx context.Context, sessionID string) error {
	id, err := parseUUID(sessionID, "session")
	if err != nil {
		return err
	}

	if err := r.queries.DeleteAnswers(ctx, id); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}

	return nil
}

// isRetryableTxError matches serialization failures, deadlocks and insert races
func isRetryableTxError(err error) bool {
	if errors.Is(err, errAnswerInsertRace) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}

	return false
}
