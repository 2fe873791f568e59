package interview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/visa-interview/internal/api/middleware"
	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/pkg/logger"
	"github.com/futig/visa-interview/internal/pkg/response"
	"github.com/futig/visa-interview/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	usecase   InterviewUsecase
	validator *validator.Validator
}

func NewHandler(usecase InterviewUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Start handles POST /interview/start
// @Summary Start an interview session
// @Description Starts a new session for the case, superseding any active one
// @Tags interview
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param request body entity.StartInterviewRequest true "Case to interview"
// @Success 201 {object} entity.StartInterviewResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Failure 409 {object} entity.ErrorResponse
// @Router /interview/start [post]
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartInterview")

	var req entity.StartInterviewRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.WithCase(ctx, req.CaseID)

	step, err := h.usecase.Start(ctx, req.CaseID, middleware.UserID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusCreated, toStartResponse(step))
}

// Next handles GET /interview/next/{sessionId}
// @Summary Get the next question
// @Description Returns the next question, or the recommendation once the interview is complete
// @Tags interview
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} entity.NextQuestionResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 403 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Failure 409 {object} entity.ErrorResponse
// @Router /interview/next/{sessionId} [get]
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "NextQuestion")

	sessionID, ok := h.pathID(ctx, w, r, "sessionId")
	if !ok {
		return
	}

	step, err := h.usecase.Next(ctx, sessionID, middleware.UserID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toNextResponse(step))
}

// Answer handles POST /interview/answer
// @Summary Submit an answer
// @Description Records or replaces the answer to a question and returns the next step
// @Tags interview
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param request body entity.AnswerRequest true "Answer"
// @Success 200 {object} entity.AnswerResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 403 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Failure 409 {object} entity.ErrorResponse
// @Router /interview/answer [post]
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SubmitAnswer")

	var req entity.AnswerRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.AddFields(ctx,
		zap.String("session_id", req.SessionID),
		zap.String("question_key", req.QuestionKey),
	)

	result, err := h.usecase.Answer(ctx, req.SessionID, middleware.UserID(ctx), req.QuestionKey, req.AnswerValue)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if req.StepNumber != 0 && req.StepNumber != result.Answer.StepNumber {
		ctxzap.Debug(ctx, "client step number differs from stored step",
			zap.Int("client_step", req.StepNumber),
			zap.Int("stored_step", result.Answer.StepNumber),
		)
	}

	response.Success(w, toAnswerResponse(result))
}

// Complete handles POST /interview/complete
// @Summary Complete the interview
// @Description Finishes the session and records the best remaining recommendation
// @Tags interview
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param request body entity.SessionRequest true "Session"
// @Success 200 {object} entity.CompletionResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 403 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Failure 409 {object} entity.ErrorResponse
// @Router /interview/complete [post]
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CompleteInterview")

	var req entity.SessionRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.WithSession(ctx, req.SessionID)

	rec, err := h.usecase.Complete(ctx, req.SessionID, middleware.UserID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toCompletionResponse(rec))
}

// SelectDirectly handles POST /interview/select
// @Summary Select a visa directly
// @Description Completes the session with a visa chosen by the user from the remaining candidates
// @Tags interview
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param request body entity.SelectVisaRequest true "Selection"
// @Success 200 {object} entity.CompletionResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 403 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Failure 409 {object} entity.ErrorResponse
// @Router /interview/select [post]
func (h *Handler) SelectDirectly(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SelectVisa")

	var req entity.SelectVisaRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.AddFields(ctx,
		zap.String("session_id", req.SessionID),
		zap.String("visa_code", req.VisaCode),
	)

	rec, err := h.usecase.SelectDirectly(ctx, req.SessionID, middleware.UserID(ctx), req.VisaCode)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toCompletionResponse(rec))
}

// Reset handles POST /interview/reset
// @Summary Restart the interview
// @Description Abandons the session and starts a fresh one on the same case
// @Tags interview
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param request body entity.SessionRequest true "Session"
// @Success 201 {object} entity.StartInterviewResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 403 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Failure 409 {object} entity.ErrorResponse
// @Router /interview/reset [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ResetInterview")

	var req entity.SessionRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.WithSession(ctx, req.SessionID)

	step, err := h.usecase.Reset(ctx, req.SessionID, middleware.UserID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusCreated, toStartResponse(step))
}

// Lock handles POST /interview/lock
// @Summary Lock the case interview
// @Description Freezes the current recommendation; later starts are rejected
// @Tags interview
// @Accept json
// @Param X-User-ID header string true "Caller identity"
// @Param request body entity.LockRequest true "Case"
// @Success 204
// @Failure 400 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Router /interview/lock [post]
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "LockInterview")

	var req entity.LockRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.WithCase(ctx, req.CaseID)

	if err := h.usecase.Lock(ctx, req.CaseID, middleware.UserID(ctx)); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// Progress handles GET /interview/progress/{sessionId}
// @Summary Get session progress
// @Tags interview
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} entity.ProgressResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 403 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Router /interview/progress/{sessionId} [get]
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetProgress")

	sessionID, ok := h.pathID(ctx, w, r, "sessionId")
	if !ok {
		return
	}

	progress, err := h.usecase.Progress(ctx, sessionID, middleware.UserID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toProgressResponse(progress))
}

// History handles GET /interview/history/{caseId}
// @Summary Get case interview history
// @Tags interview
// @Produce json
// @Param X-User-ID header string true "Caller identity"
// @Param caseId path string true "Case ID"
// @Success 200 {object} entity.HistoryResponse
// @Failure 400 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Router /interview/history/{caseId} [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetHistory")

	caseID, ok := h.pathID(ctx, w, r, "caseId")
	if !ok {
		return
	}

	history, err := h.usecase.History(ctx, caseID, middleware.UserID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toHistoryResponse(history))
}

// Report handles GET /interview/report/{caseId}
// @Summary Download the recommendation report
// @Tags interview
// @Produce octet-stream
// @Param X-User-ID header string true "Caller identity"
// @Param caseId path string true "Case ID"
// @Param format query string false "markdown, docx or pdf" default(markdown)
// @Success 200 {file} binary
// @Failure 400 {object} entity.ErrorResponse
// @Failure 404 {object} entity.ErrorResponse
// @Router /interview/report/{caseId} [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetReport")

	caseID, ok := h.pathID(ctx, w, r, "caseId")
	if !ok {
		return
	}

	format, err := h.validator.ResultFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	report, err := h.usecase.Report(ctx, caseID, middleware.UserID(ctx), format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "report generated",
		zap.String("format", string(format)),
		zap.Int("size_bytes", len(report.Content)),
	)

	response.File(w, report.ContentType, report.FileName, report.Content)
}

// decode reads and validates a JSON body, writing a 400 on failure
func (h *Handler) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return false
	}

	return true
}

func (h *Handler) pathID(ctx context.Context, w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if err := h.validator.ID(name, id); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return "", false
	}
	return id, true
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrNotFound):
		h.respondError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, entity.ErrForbidden):
		h.respondError(ctx, w, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, entity.ErrConflict):
		h.respondError(ctx, w, http.StatusConflict, err.Error(), err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
