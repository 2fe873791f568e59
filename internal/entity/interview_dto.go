package entity

import "time"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

type StartInterviewRequest struct {
	CaseID string `json:"caseId" validate:"required,uuid"`
}

type AnswerRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	// StepNumber is advisory; the server assigns the authoritative step
	StepNumber  int    `json:"stepNumber" validate:"gte=0"`
	QuestionKey string `json:"questionKey" validate:"required,max=100"`
	AnswerValue string `json:"answerValue" validate:"required,max=1000"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
}

type SelectVisaRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	VisaCode  string `json:"visaCode" validate:"required,max=20"`
}

type LockRequest struct {
	CaseID string `json:"caseId" validate:"required,uuid"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type QuestionOptionDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type QuestionDTO struct {
	Key     string              `json:"key"`
	Prompt  string              `json:"prompt"`
	Kind    QuestionKind        `json:"kind"`
	Options []QuestionOptionDTO `json:"options,omitempty"`
}

type StartInterviewResponse struct {
	SessionID string        `json:"sessionId"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"startedAt"`
	Question  *QuestionDTO  `json:"question,omitempty"`
}

type RecommendationDTO struct {
	ID            string     `json:"id"`
	SessionID     *string    `json:"sessionId,omitempty"`
	VisaCode      string     `json:"visaCode"`
	VisaName      string     `json:"visaName"`
	Rationale     string     `json:"rationale"`
	UserConfirmed bool       `json:"userConfirmed"`
	IsCurrent     bool       `json:"isCurrent"`
	IsLocked      bool       `json:"isLocked"`
	CreatedAt     time.Time  `json:"createdAt"`
	LockedAt      *time.Time `json:"lockedAt,omitempty"`
}

type NextQuestionResponse struct {
	SessionID          string             `json:"sessionId"`
	IsComplete         bool               `json:"isComplete"`
	Question           *QuestionDTO       `json:"question,omitempty"`
	RemainingVisaCodes []string           `json:"remainingVisaCodes,omitempty"`
	Recommendation     *RecommendationDTO `json:"recommendation,omitempty"`
}

type AnswerResponse struct {
	SessionID   string                `json:"sessionId"`
	QuestionKey string                `json:"questionKey"`
	AnswerValue string                `json:"answerValue"`
	StepNumber  int                   `json:"stepNumber"`
	AnsweredAt  time.Time             `json:"answeredAt"`
	Next        *NextQuestionResponse `json:"next"`
}

type CompletionResponse struct {
	SessionID              string `json:"sessionId"`
	RecommendationID       string `json:"recommendationId"`
	RecommendationVisaType string `json:"recommendationVisaType"`
	VisaName               string `json:"visaName"`
	Rationale              string `json:"rationale"`
	UserConfirmed          bool   `json:"userConfirmed"`
}

type ProgressResponse struct {
	SessionID                   string        `json:"sessionId"`
	Status                      SessionStatus `json:"status"`
	TotalQuestionsAnswered      int           `json:"totalQuestionsAnswered"`
	CompletionPercentage        int           `json:"completionPercentage"`
	RemainingVisaCodes          []string      `json:"remainingVisaCodes"`
	EstimatedQuestionsRemaining int           `json:"estimatedQuestionsRemaining"`
	StartedAt                   time.Time     `json:"startedAt"`
	LastActivityAt              time.Time     `json:"lastActivityAt"`
}

type SessionSummaryDTO struct {
	SessionID  string        `json:"sessionId"`
	Status     SessionStatus `json:"status"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
}

type HistoryResponse struct {
	CaseID                string               `json:"caseId"`
	InterviewLocked       bool                 `json:"interviewLocked"`
	Sessions              []SessionSummaryDTO  `json:"sessions"`
	CurrentRecommendation *RecommendationDTO   `json:"currentRecommendation,omitempty"`
	Recommendations       []*RecommendationDTO `json:"recommendations"`
}
