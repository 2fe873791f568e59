package validator

import (
	"testing"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     any
		wantErr error
		field   string
	}{
		{
			name: "valid start",
			req:  &entity.StartInterviewRequest{CaseID: "6f1c2a1e-5d55-4f3a-9b4e-0c8f4b0a7e11"},
		},
		{
			name:    "missing case id",
			req:     &entity.StartInterviewRequest{},
			wantErr: entity.ErrMissingField,
			field:   "caseId",
		},
		{
			name:    "case id not a uuid",
			req:     &entity.StartInterviewRequest{CaseID: "case-1"},
			wantErr: entity.ErrInvalidFormat,
			field:   "caseId",
		},
		{
			name: "answer value too long",
			req: &entity.AnswerRequest{
				SessionID:   "6f1c2a1e-5d55-4f3a-9b4e-0c8f4b0a7e11",
				QuestionKey: "purpose",
				AnswerValue: string(make([]byte, 1001)),
			},
			wantErr: entity.ErrInvalidParameter,
			field:   "answerValue",
		},
		{
			name: "negative step",
			req: &entity.AnswerRequest{
				SessionID:   "6f1c2a1e-5d55-4f3a-9b4e-0c8f4b0a7e11",
				StepNumber:  -1,
				QuestionKey: "purpose",
				AnswerValue: "tourism",
			},
			wantErr: entity.ErrInvalidParameter,
			field:   "stepNumber",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, entity.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestID(t *testing.T) {
	v := New()

	assert.NoError(t, v.ID("sessionId", "6f1c2a1e-5d55-4f3a-9b4e-0c8f4b0a7e11"))
	assert.ErrorIs(t, v.ID("sessionId", ""), entity.ErrMissingField)
	assert.ErrorIs(t, v.ID("sessionId", "nope"), entity.ErrInvalidFormat)
}

func TestResultFormat(t *testing.T) {
	v := New()

	f, err := v.ResultFormat("")
	require.NoError(t, err)
	assert.Equal(t, entity.FormatMarkdown, f)

	f, err = v.ResultFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, entity.FormatPDF, f)

	_, err = v.ResultFormat("html")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
