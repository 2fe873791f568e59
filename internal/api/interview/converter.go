package interview

import (
	"github.com/futig/visa-interview/internal/entity"
)

func toQuestionDTO(q *entity.Question) *entity.QuestionDTO {
	if q == nil {
		return nil
	}

	options := make([]entity.QuestionOptionDTO, 0, len(q.Options))
	for _, o := range q.Options {
		options = append(options, entity.QuestionOptionDTO{Value: o.Value, Label: o.Label})
	}

	return &entity.QuestionDTO{
		Key:     q.Key,
		Prompt:  q.Prompt,
		Kind:    q.Kind,
		Options: options,
	}
}

func toRecommendationDTO(rec *entity.Recommendation) *entity.RecommendationDTO {
	if rec == nil {
		return nil
	}

	return &entity.RecommendationDTO{
		ID:            rec.ID,
		SessionID:     rec.SessionID,
		VisaCode:      rec.VisaCode,
		VisaName:      rec.VisaName,
		Rationale:     rec.Rationale,
		UserConfirmed: rec.UserConfirmed,
		IsCurrent:     rec.IsCurrent,
		IsLocked:      rec.IsLocked(),
		CreatedAt:     rec.CreatedAt,
		LockedAt:      rec.LockedAt,
	}
}

func toStartResponse(step *entity.InterviewStep) *entity.StartInterviewResponse {
	resp := &entity.StartInterviewResponse{
		SessionID: step.Session.ID,
		Status:    step.Session.Status,
		StartedAt: step.Session.StartedAt,
	}
	if step.State != nil {
		resp.Question = toQuestionDTO(step.State.Next)
	}
	return resp
}

func toNextResponse(step *entity.InterviewStep) *entity.NextQuestionResponse {
	resp := &entity.NextQuestionResponse{
		SessionID:  step.Session.ID,
		IsComplete: step.IsComplete(),
	}

	if step.IsComplete() {
		resp.Recommendation = toRecommendationDTO(step.Recommendation)
		return resp
	}

	if step.State != nil {
		resp.Question = toQuestionDTO(step.State.Next)
		resp.RemainingVisaCodes = step.State.Candidates
	}
	return resp
}

func toAnswerResponse(result *entity.AnswerResult) *entity.AnswerResponse {
	return &entity.AnswerResponse{
		SessionID:   result.Answer.SessionID,
		QuestionKey: result.Answer.QuestionKey,
		AnswerValue: result.Answer.AnswerValue,
		StepNumber:  result.Answer.StepNumber,
		AnsweredAt:  result.Answer.AnsweredAt,
		Next:        toNextResponse(result.Step),
	}
}

func toCompletionResponse(rec *entity.Recommendation) *entity.CompletionResponse {
	resp := &entity.CompletionResponse{
		RecommendationID:       rec.ID,
		RecommendationVisaType: rec.VisaCode,
		VisaName:               rec.VisaName,
		Rationale:              rec.Rationale,
		UserConfirmed:          rec.UserConfirmed,
	}
	if rec.SessionID != nil {
		resp.SessionID = *rec.SessionID
	}
	return resp
}

func toProgressResponse(p *entity.Progress) *entity.ProgressResponse {
	remaining := p.RemainingVisaCodes
	if remaining == nil {
		remaining = []string{}
	}

	return &entity.ProgressResponse{
		SessionID:                   p.Session.ID,
		Status:                      p.Session.Status,
		TotalQuestionsAnswered:      p.TotalQuestionsAnswered,
		CompletionPercentage:        p.CompletionPercentage,
		RemainingVisaCodes:          remaining,
		EstimatedQuestionsRemaining: p.EstimatedQuestionsRemaining,
		StartedAt:                   p.Session.StartedAt,
		LastActivityAt:              p.LastActivityAt,
	}
}

func toHistoryResponse(h *entity.CaseHistory) *entity.HistoryResponse {
	resp := &entity.HistoryResponse{
		CaseID:                h.Case.ID,
		InterviewLocked:       h.Case.InterviewLocked,
		Sessions:              make([]entity.SessionSummaryDTO, 0, len(h.Sessions)),
		CurrentRecommendation: toRecommendationDTO(h.Current),
		Recommendations:       make([]*entity.RecommendationDTO, 0, len(h.Recommendations)),
	}

	for _, s := range h.Sessions {
		resp.Sessions = append(resp.Sessions, entity.SessionSummaryDTO{
			SessionID:  s.ID,
			Status:     s.Status,
			StartedAt:  s.StartedAt,
			FinishedAt: s.FinishedAt,
		})
	}
	for _, rec := range h.Recommendations {
		resp.Recommendations = append(resp.Recommendations, toRecommendationDTO(rec))
	}

	return resp
}
