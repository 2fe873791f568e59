package entity

import "time"

// InterviewStep is what a client sees after any session operation:
// the session, the current narrowing state and, once completed, the recommendation.
type InterviewStep struct {
	Session        *InterviewSession
	State          *NarrowingState
	Recommendation *Recommendation
}

func (s *InterviewStep) IsComplete() bool {
	return s.Recommendation != nil
}

type AnswerResult struct {
	Answer *Answer
	Step   *InterviewStep
}

type Progress struct {
	Session                     *InterviewSession
	TotalQuestionsAnswered      int
	CompletionPercentage        int
	RemainingVisaCodes          []string
	EstimatedQuestionsRemaining int
	LastActivityAt              time.Time
}

type CaseHistory struct {
	Case            *Case
	Sessions        []*InterviewSession
	Current         *Recommendation
	Recommendations []*Recommendation
}

// SynthesisInput carries a terminal outcome to be persisted on a case
type SynthesisInput struct {
	CaseID        string
	SessionID     string
	VisaCode      string
	VisaName      string
	Rationale     string
	UserConfirmed bool
}

// Report is a rendered recommendation report ready to be served as a file
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}
