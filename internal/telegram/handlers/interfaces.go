package handlers

import (
	"context"

	"github.com/futig/visa-interview/internal/entity"
)

// InterviewUsecase is the part of the interview engine the bot drives
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

// Sender delivers bot output to a chat
type Sender interface {
	Send(chatID int64, text string, markup any) error
	SendDocument(chatID int64, fileName string, content []byte) error
}
