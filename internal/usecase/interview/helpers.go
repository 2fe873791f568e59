package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ownedCase hides cases of other users behind NotFound
func (uc *InterviewUsecase) ownedCase(ctx context.Context, caseID, userID string) (*entity.Case, error) {
	c, err := uc.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	if c.UserID != userID {
		return nil, entity.ErrCaseNotFound
	}
	return c, nil
}

// ownedSession distinguishes a foreign session (Forbidden) from a missing one
func (uc *InterviewUsecase) ownedSession(ctx context.Context, sessionID, userID string) (*entity.InterviewSession, error) {
	session, err := uc.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, entity.ErrSessionForbidden
	}
	return session, nil
}

// expireIfStale moves an active session past its TTL to expired
func (uc *InterviewUsecase) expireIfStale(ctx context.Context, session *entity.InterviewSession) (*entity.InterviewSession, error) {
	if !session.IsExpired(uc.now(), uc.sessionTTL) {
		return session, nil
	}

	expired, err := uc.sessions.TransitionStatus(ctx, session.ID, entity.SessionStatusExpired, uc.now())
	if err != nil {
		if !errors.Is(err, entity.ErrConflict) {
			return nil, fmt.Errorf("expire session: %w", err)
		}
		// a concurrent request already moved it out of active
		return uc.sessions.GetSessionByID(ctx, session.ID)
	}

	sessionTransitions.WithLabelValues(string(entity.SessionStatusExpired)).Inc()
	ctxzap.Info(ctx, "interview session expired",
		zap.String("session_id", expired.ID),
		zap.Time("started_at", expired.StartedAt),
	)

	return expired, nil
}

// requireActive expires a stale session and rejects anything not active
func (uc *InterviewUsecase) requireActive(ctx context.Context, session *entity.InterviewSession) (*entity.InterviewSession, error) {
	session, err := uc.expireIfStale(ctx, session)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case entity.SessionStatusActive:
		return session, nil
	case entity.SessionStatusCompleted:
		return nil, entity.ErrSessionCompleted
	case entity.SessionStatusExpired:
		return nil, entity.ErrSessionExpired
	default:
		return nil, entity.ErrSessionNotActive
	}
}

func (uc *InterviewUsecase) computeState(ctx context.Context, sessionID string) (*entity.NarrowingState, error) {
	answers, err := uc.answers.ListAnswers(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return uc.narrower.Compute(answerMap(answers)), nil
}

func (uc *InterviewUsecase) sessionRecommendation(
	ctx context.Context, session *entity.InterviewSession,
) (*entity.Recommendation, error) {
	recs, err := uc.recs.ListRecommendations(ctx, session.CaseID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	for _, rec := range recs {
		if rec.SessionID != nil && *rec.SessionID == session.ID {
			return rec, nil
		}
	}
	return nil, entity.ErrRecommendationNotFound
}

func answerMap(answers []*entity.Answer) map[string]string {
	m := make(map[string]string, len(answers))
	for _, a := range answers {
		m[a.QuestionKey] = a.AnswerValue
	}
	return m
}

// a short candidate list means the interview is close to a recommendation
const (
	nearlyDoneCandidates = 3
	nearlyDonePercentage = 80
)

// optionValue maps an answer onto the canonical option value of a choice question
func optionValue(q *entity.Question, value string) (string, error) {
	if len(q.Options) == 0 {
		return value, nil
	}
	for _, o := range q.Options {
		if strings.EqualFold(o.Value, value) {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %s=%s", entity.ErrUnknownOption, q.Key, value)
}

func completionPercentage(session *entity.InterviewSession, state *entity.NarrowingState, answered int) int {
	if session.Status == entity.SessionStatusCompleted || state.IsTerminal() {
		return 100
	}
	total := answered + state.RemainingDepth
	if total == 0 {
		return 0
	}
	pct := answered * 100 / total
	if answered > 0 && len(state.Candidates) <= nearlyDoneCandidates {
		pct = max(pct, nearlyDonePercentage)
	}
	return pct
}

func lastActivity(session *entity.InterviewSession, answers []*entity.Answer) time.Time {
	last := session.StartedAt
	for _, a := range answers {
		if a.AnsweredAt.After(last) {
			last = a.AnsweredAt
		}
	}
	if session.FinishedAt != nil && session.FinishedAt.After(last) {
		last = *session.FinishedAt
	}
	return last
}

// completedView is the session as stored after rec completed it
func completedView(session *entity.InterviewSession, rec *entity.Recommendation) *entity.InterviewSession {
	out := *session
	finishedAt := rec.CreatedAt
	out.Status = entity.SessionStatusCompleted
	out.FinishedAt = &finishedAt
	return &out
}
