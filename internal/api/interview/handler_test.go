package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/visa-interview/internal/api/middleware"
	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/narrowing"
	"github.com/futig/visa-interview/internal/pkg/formatter"
	"github.com/futig/visa-interview/internal/pkg/validator"
	"github.com/futig/visa-interview/internal/repository/memory"
	interviewuc "github.com/futig/visa-interview/internal/usecase/interview"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router http.Handler
	caseID string
	userID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		caseID: uuid.NewString(),
		userID: uuid.NewString(),
	}

	store := memory.NewStore()
	require.NoError(t, store.Seed(context.Background(), []entity.Case{{ID: s.caseID, UserID: s.userID}}, time.Now()))

	engine := narrowing.NewCachedEngine(narrowing.NewEngine(narrowing.DefaultCatalog()), time.Minute, time.Minute)
	uc := interviewuc.NewUsecase(store, store, store, store, engine, formatter.NewFactory())
	t.Cleanup(uc.Wait)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, validator.New()), middleware.Auth)
	s.router = r

	return s
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) start(t *testing.T) entity.StartInterviewResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/interview/start", s.userID, entity.StartInterviewRequest{CaseID: s.caseID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp entity.StartInterviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_StartReturnsQuestion(t *testing.T) {
	s := newTestServer(t)

	resp := s.start(t)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, entity.SessionStatusActive, resp.Status)
	require.NotNil(t, resp.Question)
	assert.Equal(t, "purpose", resp.Question.Key)
	assert.NotEmpty(t, resp.Question.Options)
}

func TestHandler_RequiresUserID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/interview/start", "", entity.StartInterviewRequest{CaseID: s.caseID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/interview/start", "not-a-uuid", entity.StartInterviewRequest{CaseID: s.caseID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_BadRequests(t *testing.T) {
	s := newTestServer(t)
	session := s.start(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"malformed json", http.MethodPost, "/interview/start", "{not json"},
		{"missing case id", http.MethodPost, "/interview/start", entity.StartInterviewRequest{}},
		{"case id not uuid", http.MethodPost, "/interview/start", entity.StartInterviewRequest{CaseID: "abc"}},
		{"missing answer value", http.MethodPost, "/interview/answer", entity.AnswerRequest{SessionID: session.SessionID, QuestionKey: "purpose"}},
		{"negative step", http.MethodPost, "/interview/answer", entity.AnswerRequest{SessionID: session.SessionID, StepNumber: -1, QuestionKey: "purpose", AnswerValue: "tourism"}},
		{"session path not uuid", http.MethodGet, "/interview/next/123", nil},
		{"unknown visa code", http.MethodPost, "/interview/select", entity.SelectVisaRequest{SessionID: session.SessionID, VisaCode: "Z-9"}},
		{"unknown report format", http.MethodGet, "/interview/report/" + s.caseID + "?format=html", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, s.userID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, http.StatusText(http.StatusBadRequest), decodeError(t, rec).Error)
		})
	}
}

func TestHandler_OwnershipAndMissing(t *testing.T) {
	s := newTestServer(t)
	session := s.start(t)
	stranger := uuid.NewString()

	rec := s.do(t, http.MethodGet, "/interview/next/"+session.SessionID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/interview/progress/"+uuid.NewString(), s.userID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/interview/history/"+s.caseID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/interview/start", s.userID, entity.StartInterviewRequest{CaseID: uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_SupersededSessionConflicts(t *testing.T) {
	s := newTestServer(t)
	first := s.start(t)
	second := s.start(t)
	require.NotEqual(t, first.SessionID, second.SessionID)

	rec := s.do(t, http.MethodPost, "/interview/answer", s.userID, entity.AnswerRequest{
		SessionID:   first.SessionID,
		QuestionKey: "purpose",
		AnswerValue: "tourism",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_AnswerAfterNarrowingIsDone(t *testing.T) {
	s := newTestServer(t)
	session := s.start(t)

	rec := s.do(t, http.MethodPost, "/interview/answer", s.userID, entity.AnswerRequest{
		SessionID:   session.SessionID,
		QuestionKey: "purpose",
		AnswerValue: "vacation",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/interview/answer", s.userID, entity.AnswerRequest{
		SessionID:   session.SessionID,
		QuestionKey: "purpose",
		AnswerValue: "medical",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/interview/answer", s.userID, entity.AnswerRequest{
		SessionID:   session.SessionID,
		QuestionKey: "purpose",
		AnswerValue: "study",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_InterviewFlow(t *testing.T) {
	s := newTestServer(t)
	session := s.start(t)

	rec := s.do(t, http.MethodPost, "/interview/answer", s.userID, entity.AnswerRequest{
		SessionID:   session.SessionID,
		StepNumber:  1,
		QuestionKey: "purpose",
		AnswerValue: "tourism",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var answer entity.AnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, 1, answer.StepNumber)
	require.NotNil(t, answer.Next)
	assert.False(t, answer.Next.IsComplete)
	assert.Equal(t, []string{"B-1", "B-2", "ESTA"}, answer.Next.RemainingVisaCodes)

	rec = s.do(t, http.MethodGet, "/interview/progress/"+session.SessionID, s.userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var progress entity.ProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 1, progress.TotalQuestionsAnswered)
	assert.Equal(t, entity.SessionStatusActive, progress.Status)

	rec = s.do(t, http.MethodPost, "/interview/complete", s.userID, entity.SessionRequest{SessionID: session.SessionID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var completion entity.CompletionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completion))
	assert.Equal(t, session.SessionID, completion.SessionID)
	assert.Contains(t, []string{"B-1", "B-2", "ESTA"}, completion.RecommendationVisaType)
	assert.False(t, completion.UserConfirmed)

	rec = s.do(t, http.MethodPost, "/interview/complete", s.userID, entity.SessionRequest{SessionID: session.SessionID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/interview/lock", s.userID, entity.LockRequest{CaseID: s.caseID})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/interview/start", s.userID, entity.StartInterviewRequest{CaseID: s.caseID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/interview/history/"+s.caseID, s.userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history entity.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.True(t, history.InterviewLocked)
	require.NotNil(t, history.CurrentRecommendation)
	assert.True(t, history.CurrentRecommendation.IsLocked)
	assert.Len(t, history.Sessions, 1)
}

func TestHandler_SelectAndReport(t *testing.T) {
	s := newTestServer(t)
	session := s.start(t)

	rec := s.do(t, http.MethodPost, "/interview/select", s.userID, entity.SelectVisaRequest{
		SessionID: session.SessionID,
		VisaCode:  "F-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var completion entity.CompletionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completion))
	assert.Equal(t, "F-1", completion.RecommendationVisaType)
	assert.True(t, completion.UserConfirmed)

	rec = s.do(t, http.MethodGet, "/interview/report/"+s.caseID, s.userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "visa-recommendation-"+s.caseID+".md")
	assert.Contains(t, rec.Body.String(), "F-1")
}

func TestHandler_ResetStartsFreshSession(t *testing.T) {
	s := newTestServer(t)
	session := s.start(t)

	rec := s.do(t, http.MethodPost, "/interview/reset", s.userID, entity.SessionRequest{SessionID: session.SessionID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reset entity.StartInterviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	assert.NotEqual(t, session.SessionID, reset.SessionID)
	require.NotNil(t, reset.Question)
	assert.Equal(t, "purpose", reset.Question.Key)

	rec = s.do(t, http.MethodGet, "/interview/next/"+session.SessionID, s.userID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
