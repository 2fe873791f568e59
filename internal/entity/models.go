package entity

import (
	"time"
)

type SessionStatus string

// Interview session lifecycle: active is the only non-terminal state
const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
	SessionStatusSuperseded SessionStatus = "superseded"
)

func (s SessionStatus) IsTerminal() bool {
	return s != SessionStatusActive
}

type QuestionKind string

const (
	QuestionKindSingleChoice QuestionKind = "single_choice"
	QuestionKindYesNo        QuestionKind = "yes_no"
	QuestionKindText         QuestionKind = "text"
)

// Case mirrors the part of the owning case record the interview engine reads and writes
type Case struct {
	ID                      string
	UserID                  string
	InterviewLocked         bool
	ActiveSessionID         *string
	CurrentRecommendationID *string
	LastActivityAt          time.Time
	CreatedAt               time.Time
}

type InterviewSession struct {
	ID         string
	CaseID     string
	UserID     string
	Status     SessionStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	// AnswerSeq is the last step number handed out for this session
	AnswerSeq int
}

// IsExpired reports whether an active session has outlived ttl at now
func (s *InterviewSession) IsExpired(now time.Time, ttl time.Duration) bool {
	return s.Status == SessionStatusActive && now.Sub(s.StartedAt) > ttl
}

type Answer struct {
	SessionID   string
	QuestionKey string
	AnswerValue string
	StepNumber  int
	AnsweredAt  time.Time
}

type Recommendation struct {
	ID            string
	CaseID        string
	SessionID     *string
	VisaCode      string
	VisaName      string
	Rationale     string
	UserConfirmed bool
	IsCurrent     bool
	CreatedAt     time.Time
	LockedAt      *time.Time
}

func (r *Recommendation) IsLocked() bool {
	return r.LockedAt != nil
}

type QuestionOption struct {
	Value string
	Label string
}

type Question struct {
	Key     string
	Prompt  string
	Kind    QuestionKind
	Options []QuestionOption
}

// Outcome is the terminal result of narrowing
type Outcome struct {
	VisaCode  string
	VisaName  string
	Rationale string
	// Fallback is set when the answers eliminated every candidate
	Fallback bool
}

// NarrowingState is derived from an answer history and never stored
type NarrowingState struct {
	Candidates     []string
	Next           *Question
	Outcome        *Outcome
	AnsweredCount  int
	RemainingDepth int
}

func (s *NarrowingState) IsTerminal() bool {
	return s.Next == nil
}

// HasCandidate reports whether code is still eligible
func (s *NarrowingState) HasCandidate(code string) bool {
	for _, c := range s.Candidates {
		if c == code {
			return true
		}
	}
	return false
}
