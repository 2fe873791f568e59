package entity

import "time"

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeSessionStarted        CallbackEventType = "session.started"
	CallbackEventTypeRecommendationCreated CallbackEventType = "recommendation.created"
	CallbackEventTypeCaseLocked            CallbackEventType = "case.locked"
)

// CallbackEvent represents a callback event
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

type CallbackSessionStartedData struct {
	CaseID              string    `json:"caseId"`
	SessionID           string    `json:"sessionId"`
	SupersededSessionID *string   `json:"supersededSessionId,omitempty"`
	StartedAt           time.Time `json:"startedAt"`
}

type CallbackRecommendationData struct {
	CaseID           string  `json:"caseId"`
	SessionID        *string `json:"sessionId,omitempty"`
	RecommendationID string  `json:"recommendationId"`
	VisaCode         string  `json:"visaCode"`
	UserConfirmed    bool    `json:"userConfirmed"`
}

type CallbackCaseLockedData struct {
	CaseID           string  `json:"caseId"`
	RecommendationID *string `json:"recommendationId,omitempty"`
}
