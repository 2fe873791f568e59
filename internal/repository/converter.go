package repository

import (
	"fmt"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository/sqlc"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func parseUUID(id, what string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %s id %q", entity.ErrInvalidFormat, what, id)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func parseOptionalUUID(id *string, what string) (pgtype.UUID, error) {
	if id == nil || *id == "" {
		return pgtype.UUID{}, nil
	}
	return parseUUID(*id, what)
}

func toTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func uuidString(id pgtype.UUID) string {
	return uuid.UUID(id.Bytes).String()
}

func optionalUUIDString(id pgtype.UUID) *string {
	if !id.Valid {
		return nil
	}
	s := uuidString(id)
	return &s
}

func optionalTime(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func toEntityCase(dbCase *sqlc.Case) *entity.Case {
	return &entity.Case{
		ID:                      uuidString(dbCase.ID),
		UserID:                  uuidString(dbCase.UserID),
		InterviewLocked:         dbCase.InterviewLocked,
		ActiveSessionID:         optionalUUIDString(dbCase.ActiveSessionID),
		CurrentRecommendationID: optionalUUIDString(dbCase.CurrentRecommendationID),
		LastActivityAt:          dbCase.LastActivityAt.Time,
		CreatedAt:               dbCase.CreatedAt.Time,
	}
}

func toEntitySession(dbSession *sqlc.InterviewSession) *entity.InterviewSession {
	return &entity.InterviewSession{
		ID:         uuidString(dbSession.ID),
		CaseID:     uuidString(dbSession.CaseID),
		UserID:     uuidString(dbSession.UserID),
		Status:     entity.SessionStatus(dbSession.Status),
		StartedAt:  dbSession.StartedAt.Time,
		FinishedAt: optionalTime(dbSession.FinishedAt),
		AnswerSeq:  int(dbSession.AnswerSeq),
	}
}

func toEntitySessions(dbSessions []sqlc.InterviewSession) []*entity.InterviewSession {
	sessions := make([]*entity.InterviewSession, 0, len(dbSessions))
	for i := range dbSessions {
		sessions = append(sessions, toEntitySession(&dbSessions[i]))
	}
	return sessions
}

func toEntityAnswer(dbAnswer *sqlc.InterviewAnswer) *entity.Answer {
	return &entity.Answer{
		SessionID:   uuidString(dbAnswer.SessionID),
		QuestionKey: dbAnswer.QuestionKey,
		AnswerValue: dbAnswer.AnswerValue,
		StepNumber:  int(dbAnswer.StepNumber),
		AnsweredAt:  dbAnswer.AnsweredAt.Time,
	}
}

func toEntityRecommendation(dbRec *sqlc.VisaRecommendation) *entity.Recommendation {
	return &entity.Recommendation{
		ID:            uuidString(dbRec.ID),
		CaseID:        uuidString(dbRec.CaseID),
		SessionID:     optionalUUIDString(dbRec.SessionID),
		VisaCode:      dbRec.VisaCode,
		VisaName:      dbRec.VisaName,
		Rationale:     dbRec.Rationale,
		UserConfirmed: dbRec.UserConfirmed,
		IsCurrent:     dbRec.IsCurrent,
		CreatedAt:     dbRec.CreatedAt.Time,
		LockedAt:      optionalTime(dbRec.LockedAt),
	}
}
