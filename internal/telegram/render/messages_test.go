package render

import (
	"testing"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestRenderQuestion(t *testing.T) {
	q := &entity.Question{Prompt: "Why are you travelling?", Kind: entity.QuestionKindSingleChoice}

	text := RenderQuestion(q, 2, []string{"B-1", "B-2"})
	assert.Contains(t, text, "Question 3")
	assert.Contains(t, text, "Why are you travelling?")
	assert.Contains(t, text, "2 visa categories")
	assert.NotContains(t, text, "Type your answer")

	q.Kind = entity.QuestionKindText
	assert.Contains(t, RenderQuestion(q, 0, nil), "Type your answer")
}

func TestRenderRecommendation(t *testing.T) {
	locked := time.Now()
	rec := &entity.Recommendation{
		VisaCode:      "F-1",
		VisaName:      "Academic Student",
		Rationale:     "because",
		UserConfirmed: true,
		LockedAt:      &locked,
	}

	text := RenderRecommendation(rec)
	assert.Contains(t, text, "F-1 (Academic Student)")
	assert.Contains(t, text, "Selected by you")
	assert.Contains(t, text, "Locked")
}

func TestRenderProgressBar(t *testing.T) {
	assert.Equal(t, "[░░░░░░░░░░] 0%", renderProgressBar(0))
	assert.Equal(t, "[▓▓▓▓▓░░░░░] 55%", renderProgressBar(55))
	assert.Equal(t, "[▓▓▓▓▓▓▓▓▓▓] 100%", renderProgressBar(140))
}

func TestRenderHistory_MarksCurrent(t *testing.T) {
	h := &entity.CaseHistory{
		Case:     &entity.Case{InterviewLocked: true},
		Sessions: []*entity.InterviewSession{{Status: entity.SessionStatusCompleted}},
		Recommendations: []*entity.Recommendation{
			{VisaCode: "B-2", VisaName: "Tourist Visitor"},
			{VisaCode: "F-1", VisaName: "Academic Student", IsCurrent: true},
		},
	}

	text := RenderHistory(h)
	assert.Contains(t, text, "Locked")
	assert.Contains(t, text, "completed")
	assert.Contains(t, text, "F-1 (Academic Student) ⭐")
	assert.NotContains(t, text, "B-2 (Tourist Visitor) ⭐")
}
