package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	pkgRetry "github.com/futig/visa-interview/internal/pkg/retry"
	"github.com/futig/visa-interview/internal/repository/sqlc"
	"github.com/futig/visa-interview/internal/telegram/state"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to DATABASE_URL and applies migrations, skipping when unset
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	require.NoError(t, RunMigrations(dsn, "file://migrations"))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func createTestCase(t *testing.T, cases *CasePostgres) *entity.Case {
	t.Helper()

	c, err := cases.CreateCase(context.Background(), entity.Case{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		LastActivityAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return c
}

func TestPostgres_StartRaceLeavesOneActive(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	cases := NewCasePostgres(pool)
	sessions := NewInterviewSessionPostgres(pool)

	c := createTestCase(t, cases)

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := sessions.ActivateSession(ctx, entity.InterviewSession{
				ID:        uuid.NewString(),
				CaseID:    c.ID,
				UserID:    c.UserID,
				StartedAt: time.Now().UTC(),
			}, nil)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, entity.ErrStartRaceLost), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	list, err := sessions.ListSessionsByCase(ctx, c.ID)
	require.NoError(t, err)
	active := 0
	for _, s := range list {
		if s.Status == entity.SessionStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestPostgres_AnswerUpsertAndCompletion(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	cases := NewCasePostgres(pool)
	sessions := NewInterviewSessionPostgres(pool)
	answers := NewAnswerPostgres(pool, *pkgRetry.DefaultRetryConfig())
	recs := NewRecommendationPostgres(pool)

	c := createTestCase(t, cases)
	now := time.Now().UTC().Truncate(time.Microsecond)

	session, _, err := sessions.ActivateSession(ctx, entity.InterviewSession{
		ID: uuid.NewString(), CaseID: c.ID, UserID: c.UserID, StartedAt: now,
	}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, key := range []string{"purpose", "durationOfStay", "purpose", "educationLevel", "durationOfStay"} {
		key := key
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := answers.PutAnswer(ctx, entity.Answer{
				SessionID: session.ID, QuestionKey: key, AnswerValue: "v", AnsweredAt: now,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := answers.CountDistinctKeys(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	list, err := answers.ListAnswers(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, a := range list {
		assert.Equal(t, i+1, a.StepNumber)
	}

	rec, err := recs.SaveCompletion(ctx, entity.Recommendation{
		ID: uuid.NewString(), CaseID: c.ID, SessionID: &session.ID,
		VisaCode: "B-2", VisaName: "Tourist Visa", Rationale: "test", CreatedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, rec.IsCurrent)

	_, err = answers.PutAnswer(ctx, entity.Answer{SessionID: session.ID, QuestionKey: "x", AnswerValue: "y", AnsweredAt: now})
	assert.ErrorIs(t, err, entity.ErrSessionCompleted)

	locked, err := cases.LockCase(ctx, c.ID, now)
	require.NoError(t, err)
	assert.True(t, locked.InterviewLocked)

	current, err := recs.GetCurrentRecommendation(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, current.IsLocked())

	_, _, err = sessions.ActivateSession(ctx, entity.InterviewSession{
		ID: uuid.NewString(), CaseID: c.ID, UserID: c.UserID, StartedAt: now,
	}, &session.ID)
	assert.ErrorIs(t, err, entity.ErrCaseLocked)
}

func TestPostgres_ChatStateRoundTripAndExpiry(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	states := NewChatStatePostgres(pool, time.Hour)

	userID := time.Now().UnixNano()
	t.Cleanup(func() { _ = states.Delete(ctx, userID) })

	_, err := states.Get(ctx, userID)
	assert.ErrorIs(t, err, state.ErrChatStateNotFound)

	caseID := uuid.NewString()
	require.NoError(t, states.Set(ctx, &state.ChatState{
		UserID:       userID,
		CaseID:       caseID,
		QuestionKey:  "purpose",
		QuestionKind: entity.QuestionKindSingleChoice,
		OptionValues: []string{"tourism", "business"},
		UpdatedAt:    time.Now().UTC(),
	}))

	got, err := states.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, caseID, got.CaseID)
	assert.Empty(t, got.SessionID)
	assert.Equal(t, []string{"tourism", "business"}, got.OptionValues)

	states.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = states.Get(ctx, userID)
	assert.ErrorIs(t, err, state.ErrChatStateNotFound)

	pruned, err := states.Prune(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pruned, int64(1))
}

func TestChatStateConversion(t *testing.T) {
	in := &state.ChatState{
		UserID:              7,
		CaseID:              uuid.NewString(),
		SessionID:           uuid.NewString(),
		QuestionKey:         "durationOfStay",
		QuestionKind:        entity.QuestionKindSingleChoice,
		OptionValues:        []string{"short", "long"},
		PendingConfirmation: "reset",
		UpdatedAt:           time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
	}

	params, err := toDBChatStateParams(in)
	require.NoError(t, err)
	assert.True(t, params.CaseID.Valid)
	assert.True(t, params.SessionID.Valid)

	out, err := toStateChatState(&sqlc.TelegramChatState{
		UserID:    params.UserID,
		CaseID:    params.CaseID,
		SessionID: params.SessionID,
		StateData: params.StateData,
		UpdatedAt: params.UpdatedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = toDBChatStateParams(&state.ChatState{UserID: 7, CaseID: "nope"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}
