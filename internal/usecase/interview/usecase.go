package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const DefaultSessionTTL = 24 * time.Hour

// InterviewUsecase drives interview sessions for a case
type InterviewUsecase struct {
	cases       repository.CaseRepository
	sessions    repository.SessionRepository
	answers     repository.AnswerRepository
	recs        repository.RecommendationRepository
	narrower    Narrower
	synthesizer *Synthesizer
	formatters  FormatterFactory
	events      *dispatcher
	sessionTTL  time.Duration
	now         func() time.Time
}

type Option func(*InterviewUsecase)

// WithClock replaces the wall clock, used by tests to age sessions
func WithClock(now func() time.Time) Option {
	return func(uc *InterviewUsecase) {
		uc.now = now
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(uc *InterviewUsecase) {
		if ttl > 0 {
			uc.sessionTTL = ttl
		}
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(uc *InterviewUsecase) {
		uc.events = newDispatcher(p)
	}
}

// NewUsecase creates a new interview use case
func NewUsecase(
	cases repository.CaseRepository,
	sessions repository.SessionRepository,
	answers repository.AnswerRepository,
	recs repository.RecommendationRepository,
	narrower Narrower,
	formatters FormatterFactory,
	opts ...Option,
) *InterviewUsecase {
	uc := &InterviewUsecase{
		cases:      cases,
		sessions:   sessions,
		answers:    answers,
		recs:       recs,
		narrower:   narrower,
		formatters: formatters,
		sessionTTL: DefaultSessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.synthesizer = newSynthesizer(recs, uc.events)

	return uc
}

// Wait blocks until in-flight event deliveries finish
func (uc *InterviewUsecase) Wait() {
	uc.events.wait()
}

// Start opens a new active session for the case, superseding the previous one
func (uc *InterviewUsecase) Start(ctx context.Context, caseID, userID string) (*entity.InterviewStep, error) {
	c, err := uc.ownedCase(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}
	if c.InterviewLocked {
		return nil, entity.ErrCaseLocked
	}

	return uc.activate(ctx, c, c.ActiveSessionID)
}

// Next returns the next question, completing the session when narrowing is terminal
func (uc *InterviewUsecase) Next(ctx context.Context, sessionID, userID string) (*entity.InterviewStep, error) {
	session, err := uc.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if session.Status == entity.SessionStatusCompleted {
		rec, err := uc.sessionRecommendation(ctx, session)
		if err != nil {
			return nil, err
		}
		return &entity.InterviewStep{Session: session, Recommendation: rec}, nil
	}

	session, err = uc.requireActive(ctx, session)
	if err != nil {
		return nil, err
	}

	state, err := uc.computeState(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if !state.IsTerminal() {
		return &entity.InterviewStep{Session: session, State: state}, nil
	}

	rec, err := uc.finish(ctx, session, uc.narrower.Resolve(state), false)
	if err != nil {
		return nil, err
	}
	return &entity.InterviewStep{Session: completedView(session, rec), State: state, Recommendation: rec}, nil
}

// Answer records an answer and recomputes narrowing.
// The step number is assigned by storage, callers only get to observe it.
func (uc *InterviewUsecase) Answer(
	ctx context.Context, sessionID, userID, questionKey, answerValue string,
) (*entity.AnswerResult, error) {
	questionKey = strings.TrimSpace(questionKey)
	answerValue = strings.TrimSpace(answerValue)

	session, err := uc.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	session, err = uc.requireActive(ctx, session)
	if err != nil {
		return nil, err
	}

	if questionKey == "" {
		return nil, fmt.Errorf("%w: questionKey", entity.ErrMissingField)
	}
	if answerValue == "" {
		return nil, fmt.Errorf("%w: answerValue", entity.ErrMissingField)
	}

	before, err := uc.computeState(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	// a terminal state is final until Next or Complete records it
	if before.IsTerminal() {
		return nil, entity.ErrNarrowingDone
	}
	if before.Next.Key == questionKey {
		answerValue, err = optionValue(before.Next, answerValue)
		if err != nil {
			return nil, err
		}
	}

	stored, err := uc.answers.PutAnswer(ctx, entity.Answer{
		SessionID:   session.ID,
		QuestionKey: questionKey,
		AnswerValue: answerValue,
		AnsweredAt:  uc.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("put answer: %w", err)
	}

	kind := "new"
	if stored.StepNumber <= session.AnswerSeq {
		kind = "overwrite"
	}
	answersRecorded.WithLabelValues(kind).Inc()

	state, err := uc.computeState(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "answer recorded",
		zap.String("question_key", stored.QuestionKey),
		zap.Int("step_number", stored.StepNumber),
		zap.Int("remaining_candidates", len(state.Candidates)),
	)

	return &entity.AnswerResult{
		Answer: stored,
		Step:   &entity.InterviewStep{Session: session, State: state},
	}, nil
}

// Complete stops the interview and recommends the best remaining candidate
func (uc *InterviewUsecase) Complete(ctx context.Context, sessionID, userID string) (*entity.Recommendation, error) {
	session, err := uc.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	session, err = uc.requireActive(ctx, session)
	if err != nil {
		return nil, err
	}

	state, err := uc.computeState(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	return uc.finish(ctx, session, uc.narrower.Resolve(state), false)
}

// SelectDirectly completes the interview with a visa the user picked from the remaining candidates
func (uc *InterviewUsecase) SelectDirectly(
	ctx context.Context, sessionID, userID, visaCode string,
) (*entity.Recommendation, error) {
	visaCode = strings.TrimSpace(visaCode)

	session, err := uc.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	session, err = uc.requireActive(ctx, session)
	if err != nil {
		return nil, err
	}

	if visaCode == "" {
		return nil, fmt.Errorf("%w: visaCode", entity.ErrMissingField)
	}

	state, err := uc.computeState(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if !state.HasCandidate(visaCode) {
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidVisaCode, visaCode)
	}

	outcome, err := uc.narrower.Direct(visaCode)
	if err != nil {
		return nil, err
	}

	return uc.finish(ctx, session, outcome, true)
}

// Reset discards the session and starts a fresh one for the same case
func (uc *InterviewUsecase) Reset(ctx context.Context, sessionID, userID string) (*entity.InterviewStep, error) {
	session, err := uc.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	c, err := uc.ownedCase(ctx, session.CaseID, userID)
	if err != nil {
		return nil, err
	}
	if c.InterviewLocked {
		return nil, entity.ErrCaseLocked
	}

	// answers of a completed session back its recommendation
	if session.Status != entity.SessionStatusCompleted {
		if err := uc.answers.DeleteAnswers(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("delete answers of reset session: %w", err)
		}
	}

	step, err := uc.activate(ctx, c, c.ActiveSessionID)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "interview session reset",
		zap.String("previous_session_id", session.ID),
		zap.String("session_id", step.Session.ID),
	)

	return step, nil
}

// Lock closes the interview gate of the case. Locking twice is not an error.
func (uc *InterviewUsecase) Lock(ctx context.Context, caseID, userID string) error {
	c, err := uc.ownedCase(ctx, caseID, userID)
	if err != nil {
		return err
	}

	locked, err := uc.cases.LockCase(ctx, c.ID, uc.now())
	if err != nil {
		return fmt.Errorf("lock case: %w", err)
	}

	if c.InterviewLocked {
		ctxzap.Debug(ctx, "case already locked", zap.String("case_id", c.ID))
		return nil
	}

	casesLocked.Inc()
	ctxzap.Info(ctx, "case interview locked", zap.String("case_id", c.ID))

	uc.events.publish(ctx, func(ctx context.Context, p EventPublisher) {
		p.SendCaseLocked(ctx, &entity.CallbackCaseLockedData{
			CaseID:           locked.ID,
			RecommendationID: locked.CurrentRecommendationID,
		})
	})

	return nil
}

// Progress reports how far the session got. Expired sessions are reported, not rejected.
func (uc *InterviewUsecase) Progress(ctx context.Context, sessionID, userID string) (*entity.Progress, error) {
	session, err := uc.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	session, err = uc.expireIfStale(ctx, session)
	if err != nil {
		return nil, err
	}

	answers, err := uc.answers.ListAnswers(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answered, err := uc.answers.CountDistinctKeys(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}

	state := uc.narrower.Compute(answerMap(answers))

	progress := &entity.Progress{
		Session:                     session,
		TotalQuestionsAnswered:      answered,
		RemainingVisaCodes:          state.Candidates,
		EstimatedQuestionsRemaining: state.RemainingDepth,
		CompletionPercentage:        completionPercentage(session, state, answered),
		LastActivityAt:              lastActivity(session, answers),
	}
	if session.Status.IsTerminal() {
		progress.EstimatedQuestionsRemaining = 0
	}

	return progress, nil
}

// History lists every session and recommendation of the case
func (uc *InterviewUsecase) History(ctx context.Context, caseID, userID string) (*entity.CaseHistory, error) {
	c, err := uc.ownedCase(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := uc.sessions.ListSessionsByCase(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for i, s := range sessions {
		if sessions[i], err = uc.expireIfStale(ctx, s); err != nil {
			return nil, err
		}
	}

	recs, err := uc.recs.ListRecommendations(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	history := &entity.CaseHistory{
		Case:            c,
		Sessions:        sessions,
		Recommendations: recs,
	}
	for _, rec := range recs {
		if rec.IsCurrent {
			history.Current = rec
			break
		}
	}

	return history, nil
}

// activate creates a session and swaps it in as the case's active one
func (uc *InterviewUsecase) activate(
	ctx context.Context, c *entity.Case, expectedActiveID *string,
) (*entity.InterviewStep, error) {
	created, superseded, err := uc.sessions.ActivateSession(ctx, entity.InterviewSession{
		ID:        uuid.New().String(),
		CaseID:    c.ID,
		UserID:    c.UserID,
		StartedAt: uc.now(),
	}, expectedActiveID)
	if err != nil {
		if errors.Is(err, entity.ErrStartRaceLost) {
			startRacesLost.Inc()
		}
		return nil, fmt.Errorf("activate session: %w", err)
	}

	sessionsStarted.Inc()
	sessionTransitions.WithLabelValues(string(entity.SessionStatusSuperseded)).Add(float64(len(superseded)))

	ctxzap.Info(ctx, "interview session started",
		zap.String("case_id", c.ID),
		zap.String("session_id", created.ID),
		zap.Strings("superseded", superseded),
	)

	data := &entity.CallbackSessionStartedData{
		CaseID:    created.CaseID,
		SessionID: created.ID,
		StartedAt: created.StartedAt,
	}
	if len(superseded) > 0 {
		data.SupersededSessionID = &superseded[0]
	}
	uc.events.publish(ctx, func(ctx context.Context, p EventPublisher) {
		p.SendSessionStarted(ctx, data)
	})

	return &entity.InterviewStep{
		Session: created,
		State:   uc.narrower.Compute(map[string]string{}),
	}, nil
}

func (uc *InterviewUsecase) finish(
	ctx context.Context, session *entity.InterviewSession, outcome *entity.Outcome, userConfirmed bool,
) (*entity.Recommendation, error) {
	rec, err := uc.synthesizer.Synthesize(ctx, entity.SynthesisInput{
		CaseID:        session.CaseID,
		SessionID:     session.ID,
		VisaCode:      outcome.VisaCode,
		VisaName:      outcome.VisaName,
		Rationale:     outcome.Rationale,
		UserConfirmed: userConfirmed,
	}, uc.now())
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	return rec, nil
}
