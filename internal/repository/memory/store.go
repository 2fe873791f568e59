// Package memory keeps interview state in process memory. It mirrors the
// Postgres repositories' semantics and backs the memory storage driver and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository"
	"github.com/google/uuid"
)

var (
	_ repository.CaseRepository           = &Store{}
	_ repository.SessionRepository        = &Store{}
	_ repository.AnswerRepository         = &Store{}
	_ repository.RecommendationRepository = &Store{}
)

type answerKey struct {
	sessionID string
	key       string
}

// Store implements every repository interface behind a single mutex.
// Each call holds the lock only for its own read-modify-write.
type Store struct {
	mu              sync.Mutex
	cases           map[string]*entity.Case
	sessions        map[string]*entity.InterviewSession
	answers         map[answerKey]*entity.Answer
	recommendations map[string]*entity.Recommendation
}

func NewStore() *Store {
	return &Store{
		cases:           make(map[string]*entity.Case),
		sessions:        make(map[string]*entity.InterviewSession),
		answers:         make(map[answerKey]*entity.Answer),
		recommendations: make(map[string]*entity.Recommendation),
	}
}

func checkID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s id %q", entity.ErrInvalidFormat, what, id)
	}
	return nil
}

// Case operations

func (s *Store) CreateCase(_ context.Context, c entity.Case) (*entity.Case, error) {
	if err := checkID(c.ID, "case"); err != nil {
		return nil, err
	}
	if err := checkID(c.UserID, "user"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cases[c.ID]; ok {
		return nil, fmt.Errorf("create case: %s already exists", c.ID)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.LastActivityAt.IsZero() {
		c.LastActivityAt = c.CreatedAt
	}
	stored := c
	s.cases[c.ID] = &stored

	return copyCase(&stored), nil
}

func (s *Store) GetCase(_ context.Context, id string) (*entity.Case, error) {
	if err := checkID(id, "case"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[id]
	if !ok {
		return nil, entity.ErrCaseNotFound
	}
	return copyCase(c), nil
}

func (s *Store) IsLocked(ctx context.Context, id string) (bool, error) {
	c, err := s.GetCase(ctx, id)
	if err != nil {
		return false, err
	}
	return c.InterviewLocked, nil
}

func (s *Store) LockCase(_ context.Context, id string, at time.Time) (*entity.Case, error) {
	if err := checkID(id, "case"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[id]
	if !ok {
		return nil, entity.ErrCaseNotFound
	}
	c.InterviewLocked = true
	c.LastActivityAt = at

	for _, rec := range s.recommendations {
		if rec.CaseID == id && rec.IsCurrent && rec.LockedAt == nil {
			lockedAt := at
			rec.LockedAt = &lockedAt
		}
	}

	return copyCase(c), nil
}

// Session operations

func (s *Store) ActivateSession(
	_ context.Context, session entity.InterviewSession, expectedActiveID *string,
) (*entity.InterviewSession, []string, error) {
	if err := checkID(session.ID, "session"); err != nil {
		return nil, nil, err
	}
	if err := checkID(session.CaseID, "case"); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[session.CaseID]
	if !ok {
		return nil, nil, entity.ErrCaseNotFound
	}
	if c.InterviewLocked {
		return nil, nil, entity.ErrCaseLocked
	}

	if !sameID(c.ActiveSessionID, expectedActiveID) {
		finishedAt := session.StartedAt
		lost := session
		lost.Status = entity.SessionStatusSuperseded
		lost.FinishedAt = &finishedAt
		lost.AnswerSeq = 0
		s.sessions[lost.ID] = &lost
		return copySession(&lost), nil, entity.ErrStartRaceLost
	}

	var superseded []string
	for _, existing := range s.sessions {
		if existing.CaseID == session.CaseID && existing.Status == entity.SessionStatusActive {
			finishedAt := session.StartedAt
			existing.Status = entity.SessionStatusSuperseded
			existing.FinishedAt = &finishedAt
			superseded = append(superseded, existing.ID)
		}
	}
	sort.Strings(superseded)

	created := session
	created.Status = entity.SessionStatusActive
	created.FinishedAt = nil
	created.AnswerSeq = 0
	s.sessions[created.ID] = &created

	activeID := created.ID
	c.ActiveSessionID = &activeID
	c.LastActivityAt = session.StartedAt

	return copySession(&created), superseded, nil
}

func (s *Store) GetSessionByID(_ context.Context, id string) (*entity.InterviewSession, error) {
	if err := checkID(id, "session"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (s *Store) TransitionStatus(
	_ context.Context, id string, status entity.SessionStatus, at time.Time,
) (*entity.InterviewSession, error) {
	if err := checkID(id, "session"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.activeSessionLocked(id)
	if err != nil {
		return nil, err
	}
	finishedAt := at
	session.Status = status
	session.FinishedAt = &finishedAt

	return copySession(session), nil
}

func (s *Store) ListSessionsByCase(_ context.Context, caseID string) ([]*entity.InterviewSession, error) {
	if err := checkID(caseID, "case"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []*entity.InterviewSession
	for _, session := range s.sessions {
		if session.CaseID == caseID {
			sessions = append(sessions, copySession(session))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.After(sessions[j].StartedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})

	return sessions, nil
}

// Answer operations

func (s *Store) PutAnswer(_ context.Context, answer entity.Answer) (*entity.Answer, error) {
	if err := checkID(answer.SessionID, "session"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.activeSessionLocked(answer.SessionID)
	if err != nil {
		return nil, err
	}

	key := answerKey{sessionID: answer.SessionID, key: answer.QuestionKey}
	if existing, ok := s.answers[key]; ok {
		existing.AnswerValue = answer.AnswerValue
		existing.AnsweredAt = answer.AnsweredAt
		stored := *existing
		return &stored, nil
	}

	session.AnswerSeq++
	stored := answer
	stored.StepNumber = session.AnswerSeq
	s.answers[key] = &stored

	result := stored
	return &result, nil
}

func (s *Store) ListAnswers(_ context.Context, sessionID string) ([]*entity.Answer, error) {
	if err := checkID(sessionID, "session"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var answers []*entity.Answer
	for key, answer := range s.answers {
		if key.sessionID == sessionID {
			a := *answer
			answers = append(answers, &a)
		}
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].StepNumber < answers[j].StepNumber
	})

	return answers, nil
}

func (s *Store) CountDistinctKeys(_ context.Context, sessionID string) (int, error) {
	if err := checkID(sessionID, "session"); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.answers {
		if key.sessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteAnswers(_ context.Context, sessionID string) error {
	if err := checkID(sessionID, "session"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.answers {
		if key.sessionID == sessionID {
			delete(s.answers, key)
		}
	}
	return nil
}

// Recommendation operations

func (s *Store) SaveCompletion(_ context.Context, rec entity.Recommendation) (*entity.Recommendation, error) {
	if err := checkID(rec.ID, "recommendation"); err != nil {
		return nil, err
	}
	if err := checkID(rec.CaseID, "case"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[rec.CaseID]
	if !ok {
		return nil, entity.ErrCaseNotFound
	}

	if rec.SessionID != nil {
		session, err := s.activeSessionLocked(*rec.SessionID)
		if err != nil {
			return nil, err
		}
		finishedAt := rec.CreatedAt
		session.Status = entity.SessionStatusCompleted
		session.FinishedAt = &finishedAt
	}

	for _, existing := range s.recommendations {
		if existing.CaseID == rec.CaseID {
			existing.IsCurrent = false
		}
	}

	stored := rec
	stored.IsCurrent = true
	stored.LockedAt = nil
	s.recommendations[stored.ID] = &stored

	recID := stored.ID
	c.CurrentRecommendationID = &recID
	c.LastActivityAt = rec.CreatedAt

	return copyRecommendation(&stored), nil
}

func (s *Store) GetCurrentRecommendation(_ context.Context, caseID string) (*entity.Recommendation, error) {
	if err := checkID(caseID, "case"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recommendations {
		if rec.CaseID == caseID && rec.IsCurrent {
			return copyRecommendation(rec), nil
		}
	}
	return nil, entity.ErrRecommendationNotFound
}

func (s *Store) ListRecommendations(_ context.Context, caseID string) ([]*entity.Recommendation, error) {
	if err := checkID(caseID, "case"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []*entity.Recommendation
	for _, rec := range s.recommendations {
		if rec.CaseID == caseID {
			recs = append(recs, copyRecommendation(rec))
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})

	return recs, nil
}

// activeSessionLocked returns the stored session if it is active. Caller holds s.mu.
func (s *Store) activeSessionLocked(id string) (*entity.InterviewSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
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

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyCase(c *entity.Case) *entity.Case {
	out := *c
	if c.ActiveSessionID != nil {
		id := *c.ActiveSessionID
		out.ActiveSessionID = &id
	}
	if c.CurrentRecommendationID != nil {
		id := *c.CurrentRecommendationID
		out.CurrentRecommendationID = &id
	}
	return &out
}

func copySession(session *entity.InterviewSession) *entity.InterviewSession {
	out := *session
	if session.FinishedAt != nil {
		t := *session.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}

func copyRecommendation(rec *entity.Recommendation) *entity.Recommendation {
	out := *rec
	if rec.SessionID != nil {
		id := *rec.SessionID
		out.SessionID = &id
	}
	if rec.LockedAt != nil {
		t := *rec.LockedAt
		out.LockedAt = &t
	}
	return &out
}
