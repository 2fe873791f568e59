package interview

import (
	"context"

	"github.com/futig/visa-interview/internal/entity"
)

type InterviewUsecase interface {
	Start(ctx context.Context, caseID, userID string) (*entity.InterviewStep, error)
	Next(ctx context.Context, sessionID, userID string) (*entity.InterviewStep, error)
	Answer(ctx context.Context, sessionID, userID, questionKey, answerValue string) (*entity.AnswerResult, error)
	Complete(ctx context.Context, sessionID, userID string) (*entity.Recommendation, error)
	SelectDirectly(ctx context.Context, sessionID, userID, visaCode string) (*entity.Recommendation, error)
	Reset(ctx context.Context, sessionID, userID string) (*entity.InterviewStep, error)
	Lock(ctx context.Context, caseID, userID string) error
	Progress(ctx context.Context, sessionID, userID string) (*entity.Progress, error)
	History(ctx context.Context, caseID, userID string) (*entity.CaseHistory, error)
	Report(ctx context.Context, caseID, userID string, format entity.ResultFormat) (*entity.Report, error)
}
