package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/narrowing"
	"github.com/futig/visa-interview/internal/pkg/formatter"
	"github.com/futig/visa-interview/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.CallbackEventType
	recs   []*entity.CallbackRecommendationData
}

func (p *recordingPublisher) record(e entity.CallbackEventType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) SendSessionStarted(_ context.Context, _ *entity.CallbackSessionStartedData) {
	p.record(entity.CallbackEventTypeSessionStarted)
}

func (p *recordingPublisher) SendRecommendationCreated(_ context.Context, data *entity.CallbackRecommendationData) {
	p.mu.Lock()
	p.recs = append(p.recs, data)
	p.mu.Unlock()
	p.record(entity.CallbackEventTypeRecommendationCreated)
}

func (p *recordingPublisher) SendCaseLocked(_ context.Context, _ *entity.CallbackCaseLockedData) {
	p.record(entity.CallbackEventTypeCaseLocked)
}

func (p *recordingPublisher) count(e entity.CallbackEventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, got := range p.events {
		if got == e {
			n++
		}
	}
	return n
}

type fixture struct {
	uc        *InterviewUsecase
	store     *memory.Store
	clock     *fakeClock
	publisher *recordingPublisher
	caseID    string
	userID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		clock:     clock,
		publisher: &recordingPublisher{},
		caseID:    uuid.NewString(),
		userID:    uuid.NewString(),
	}
	require.NoError(t, store.Seed(context.Background(), []entity.Case{{ID: f.caseID, UserID: f.userID}}, clock.Now()))

	engine := narrowing.NewCachedEngine(narrowing.NewEngine(narrowing.DefaultCatalog()), time.Minute, time.Minute)
	f.uc = NewUsecase(store, store, store, store, engine, formatter.NewFactory(),
		WithClock(clock.Now),
		WithSessionTTL(24*time.Hour),
		WithEventPublisher(f.publisher),
	)
	t.Cleanup(f.uc.Wait)

	return f
}

func (f *fixture) start(t *testing.T) *entity.InterviewStep {
	t.Helper()
	step, err := f.uc.Start(context.Background(), f.caseID, f.userID)
	require.NoError(t, err)
	return step
}

func TestStart_ReturnsFirstQuestion(t *testing.T) {
	f := newFixture(t)

	step := f.start(t)

	assert.Equal(t, entity.SessionStatusActive, step.Session.Status)
	assert.Equal(t, f.clock.Now(), step.Session.StartedAt)
	require.NotNil(t, step.State.Next)
	assert.Equal(t, "purpose", step.State.Next.Key)
	assert.False(t, step.IsComplete())

	f.uc.Wait()
	assert.Equal(t, 1, f.publisher.count(entity.CallbackEventTypeSessionStarted))
}

func TestStart_UnknownOrForeignCaseIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Start(ctx, uuid.NewString(), f.userID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = f.uc.Start(ctx, f.caseID, uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrCaseNotFound)
}

func TestStart_SupersedesPreviousSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.start(t)
	second := f.start(t)
	assert.NotEqual(t, first.Session.ID, second.Session.ID)

	_, err := f.uc.Answer(ctx, first.Session.ID, f.userID, "purpose", "tourism")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrConflict)

	progress, err := f.uc.Progress(ctx, first.Session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusSuperseded, progress.Session.Status)

	_, err = f.uc.Answer(ctx, second.Session.ID, f.userID, "purpose", "tourism")
	assert.NoError(t, err)
}

func TestStart_ConcurrentStartsLeaveOneActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const racers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started []string
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			step, err := f.uc.Start(ctx, f.caseID, f.userID)
			if err != nil {
				assert.ErrorIs(t, err, entity.ErrConflict)
				return
			}
			mu.Lock()
			started = append(started, step.Session.ID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.NotEmpty(t, started)

	history, err := f.uc.History(ctx, f.caseID, f.userID)
	require.NoError(t, err)
	active := 0
	for _, s := range history.Sessions {
		if s.Status == entity.SessionStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestAnswer_IdempotentUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	first, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "tourism")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Answer.StepNumber)

	second, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "business")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Answer.StepNumber)
	assert.Equal(t, "business", second.Answer.AnswerValue)

	progress, err := f.uc.Progress(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.TotalQuestionsAnswered)

	answers, err := f.store.ListAnswers(ctx, step.Session.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 1)
}

func TestAnswer_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, " ", "tourism")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "")
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = f.uc.Answer(ctx, uuid.NewString(), f.userID, "purpose", "tourism")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestAnswer_UnknownOption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "vacation")
	assert.ErrorIs(t, err, entity.ErrUnknownOption)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	count, err := f.store.CountDistinctKeys(ctx, step.Session.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	result, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "Tourism")
	require.NoError(t, err)
	assert.Equal(t, "tourism", result.Answer.AnswerValue)
	assert.Equal(t, []string{"B-1", "B-2", "ESTA"}, result.Step.State.Candidates)
}

func TestAnswer_RejectedAfterNarrowingIsDone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "citizenship")
	require.NoError(t, err)
	result, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "currentStatus", "permanent_resident")
	require.NoError(t, err)
	require.True(t, result.Step.State.IsTerminal())
	assert.Equal(t, []string{"N-400"}, result.Step.State.Candidates)

	_, err = f.uc.Answer(ctx, step.Session.ID, f.userID, "residencyYears", "1")
	assert.ErrorIs(t, err, entity.ErrNarrowingDone)
	assert.ErrorIs(t, err, entity.ErrConflict)

	_, err = f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "tourism")
	assert.ErrorIs(t, err, entity.ErrNarrowingDone)

	count, err := f.store.CountDistinctKeys(ctx, step.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	next, err := f.uc.Next(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	require.True(t, next.IsComplete())
	assert.Equal(t, "N-400", next.Recommendation.VisaCode)
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)
	intruder := uuid.NewString()

	_, err := f.uc.Answer(ctx, step.Session.ID, intruder, "purpose", "tourism")
	assert.ErrorIs(t, err, entity.ErrForbidden)
	assert.NotErrorIs(t, err, entity.ErrNotFound)

	_, err = f.uc.Progress(ctx, step.Session.ID, intruder)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = f.uc.Next(ctx, step.Session.ID, intruder)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = f.uc.Complete(ctx, step.Session.ID, intruder)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = f.uc.Reset(ctx, step.Session.ID, intruder)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	count, err := f.store.CountDistinctKeys(ctx, step.Session.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		wantErr bool
	}{
		{name: "23 hours old is still active", age: 23 * time.Hour},
		{name: "25 hours old is expired", age: 25 * time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			step := f.start(t)

			f.clock.Advance(tt.age)

			_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "tourism")
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, entity.ErrSessionExpired)
			assert.ErrorIs(t, err, entity.ErrConflict)

			// progress still reports an expired session
			progress, err := f.uc.Progress(ctx, step.Session.ID, f.userID)
			require.NoError(t, err)
			assert.Equal(t, entity.SessionStatusExpired, progress.Session.Status)

			_, err = f.uc.Next(ctx, step.Session.ID, f.userID)
			assert.ErrorIs(t, err, entity.ErrSessionExpired)
		})
	}
}

func TestLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	require.NoError(t, f.uc.Lock(ctx, f.caseID, f.userID))
	require.NoError(t, f.uc.Lock(ctx, f.caseID, f.userID), "locking twice succeeds")

	for i := 0; i < 3; i++ {
		_, err := f.uc.Start(ctx, f.caseID, f.userID)
		assert.ErrorIs(t, err, entity.ErrCaseLocked)
		assert.ErrorIs(t, err, entity.ErrConflict)
	}

	_, err := f.uc.Reset(ctx, step.Session.ID, f.userID)
	assert.ErrorIs(t, err, entity.ErrCaseLocked)

	err = f.uc.Lock(ctx, f.caseID, uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrNotFound)

	f.uc.Wait()
	assert.Equal(t, 1, f.publisher.count(entity.CallbackEventTypeCaseLocked))
}

func TestLock_StampsCurrentRecommendation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "tourism")
	require.NoError(t, err)
	rec, err := f.uc.Complete(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)

	require.NoError(t, f.uc.Lock(ctx, f.caseID, f.userID))

	history, err := f.uc.History(ctx, f.caseID, f.userID)
	require.NoError(t, err)
	require.NotNil(t, history.Current)
	assert.Equal(t, rec.ID, history.Current.ID)
	assert.True(t, history.Current.IsLocked())
	assert.True(t, history.Case.InterviewLocked)
}

func TestSelectDirectly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "tourism")
	require.NoError(t, err)

	_, err = f.uc.SelectDirectly(ctx, step.Session.ID, f.userID, "H-1B")
	require.ErrorIs(t, err, entity.ErrInvalidVisaCode)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	rec, err := f.uc.SelectDirectly(ctx, step.Session.ID, f.userID, "ESTA")
	require.NoError(t, err)
	assert.Equal(t, "ESTA", rec.VisaCode)
	assert.True(t, rec.UserConfirmed)
	assert.Contains(t, rec.Rationale, "selected")

	progress, err := f.uc.Progress(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusCompleted, progress.Session.Status)
	assert.Equal(t, 100, progress.CompletionPercentage)

	_, err = f.uc.SelectDirectly(ctx, step.Session.ID, f.userID, "B-2")
	assert.ErrorIs(t, err, entity.ErrSessionCompleted)
}

func TestReset_ProducesNewIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "study")
	require.NoError(t, err)

	reset, err := f.uc.Reset(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	assert.NotEqual(t, step.Session.ID, reset.Session.ID)
	assert.Equal(t, entity.SessionStatusActive, reset.Session.Status)
	require.NotNil(t, reset.State.Next)
	assert.Equal(t, "purpose", reset.State.Next.Key)

	old, err := f.store.GetSessionByID(ctx, step.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusSuperseded, old.Status)

	count, err := f.store.CountDistinctKeys(ctx, step.Session.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

type failingAnswers struct {
	*memory.Store
}

func (failingAnswers) DeleteAnswers(context.Context, string) error {
	return errors.New("connection reset")
}

func TestReset_FailedCleanupKeepsSessionActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	engine := narrowing.NewCachedEngine(narrowing.NewEngine(narrowing.DefaultCatalog()), time.Minute, time.Minute)
	uc := NewUsecase(f.store, f.store, failingAnswers{f.store}, f.store, engine, formatter.NewFactory(),
		WithClock(f.clock.Now),
	)

	_, err := uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "study")
	require.NoError(t, err)

	_, err = uc.Reset(ctx, step.Session.ID, f.userID)
	require.Error(t, err)

	c, err := f.store.GetCase(ctx, f.caseID)
	require.NoError(t, err)
	require.NotNil(t, c.ActiveSessionID)
	assert.Equal(t, step.Session.ID, *c.ActiveSessionID)

	session, err := f.store.GetSessionByID(ctx, step.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, session.Status)

	reset, err := f.uc.Reset(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	assert.NotEqual(t, step.Session.ID, reset.Session.ID)
}

func TestCompletionPercentage(t *testing.T) {
	active := &entity.InterviewSession{Status: entity.SessionStatusActive}
	question := &entity.Question{Key: "q"}

	tests := []struct {
		name     string
		session  *entity.InterviewSession
		state    *entity.NarrowingState
		answered int
		want     int
	}{
		{
			name:    "nothing answered",
			session: active,
			state:   &entity.NarrowingState{Candidates: []string{"A", "B"}, Next: question, RemainingDepth: 4},
			want:    0,
		},
		{
			name:     "many candidates left",
			session:  active,
			state:    &entity.NarrowingState{Candidates: []string{"A", "B", "C", "D"}, Next: question, RemainingDepth: 3},
			answered: 1,
			want:     25,
		},
		{
			name:     "few candidates left",
			session:  active,
			state:    &entity.NarrowingState{Candidates: []string{"A", "B", "C"}, Next: question, RemainingDepth: 3},
			answered: 1,
			want:     80,
		},
		{
			name:     "few candidates and far along",
			session:  active,
			state:    &entity.NarrowingState{Candidates: []string{"A", "B"}, Next: question, RemainingDepth: 1},
			answered: 9,
			want:     90,
		},
		{
			name:     "terminal",
			session:  active,
			state:    &entity.NarrowingState{Candidates: []string{"A"}},
			answered: 2,
			want:     100,
		},
		{
			name:     "completed",
			session:  &entity.InterviewSession{Status: entity.SessionStatusCompleted},
			state:    &entity.NarrowingState{Candidates: []string{"A", "B"}, Next: question, RemainingDepth: 2},
			answered: 1,
			want:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completionPercentage(tt.session, tt.state, tt.answered))
		})
	}
}

func TestNext_AutoCompletesTerminalState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	next, err := f.uc.Next(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	require.False(t, next.IsComplete())
	assert.Equal(t, "purpose", next.State.Next.Key)

	answered, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "medical")
	require.NoError(t, err)
	assert.True(t, answered.Step.State.IsTerminal())

	next, err = f.uc.Next(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	require.True(t, next.IsComplete())
	assert.Equal(t, "B-2", next.Recommendation.VisaCode)
	assert.Equal(t, entity.SessionStatusCompleted, next.Session.Status)

	again, err := f.uc.Next(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, next.Recommendation.ID, again.Recommendation.ID)

	_, err = f.uc.Complete(ctx, step.Session.ID, f.userID)
	assert.ErrorIs(t, err, entity.ErrSessionCompleted)
}

func TestTourismScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	result, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "tourism")
	require.NoError(t, err)
	assert.Equal(t, []string{"B-1", "B-2", "ESTA"}, result.Step.State.Candidates)

	progress, err := f.uc.Progress(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.TotalQuestionsAnswered)
	assert.Equal(t, entity.SessionStatusActive, progress.Session.Status)
	assert.Equal(t, 80, progress.CompletionPercentage)

	rec, err := f.uc.Complete(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.VisaCode)
	assert.NotEmpty(t, rec.Rationale)
	assert.False(t, rec.UserConfirmed)

	f.uc.Wait()
	assert.Equal(t, 1, f.publisher.count(entity.CallbackEventTypeRecommendationCreated))
}

func TestHistoryKeepsEveryRecommendation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.start(t)
	_, err := f.uc.Complete(ctx, first.Session.ID, f.userID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second := f.start(t)
	_, err = f.uc.SelectDirectly(ctx, second.Session.ID, f.userID, "F-1")
	require.NoError(t, err)

	history, err := f.uc.History(ctx, f.caseID, f.userID)
	require.NoError(t, err)
	assert.Len(t, history.Sessions, 2)
	require.Len(t, history.Recommendations, 2)
	require.NotNil(t, history.Current)
	assert.Equal(t, "F-1", history.Current.VisaCode)
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	step := f.start(t)

	_, err := f.uc.Answer(ctx, step.Session.ID, f.userID, "purpose", "medical")
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, step.Session.ID, f.userID)
	require.NoError(t, err)

	report, err := f.uc.Report(ctx, f.caseID, f.userID, entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "visa-recommendation-"+f.caseID+".md", report.FileName)
	assert.Contains(t, string(report.Content), "Visa: B-2")

	_, err = f.uc.Report(ctx, f.caseID, uuid.NewString(), entity.FormatMarkdown)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = f.uc.Report(ctx, f.caseID, f.userID, "html")
	assert.True(t, errors.Is(err, entity.ErrInvalidInput))
}
