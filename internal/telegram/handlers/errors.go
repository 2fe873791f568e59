package handlers

import (
	"context"
	"errors"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

func warning(err error, userMessage, logMessage string) *HandlerError {
	return &HandlerError{Err: err, UserMessage: userMessage, LogMessage: logMessage, Severity: SeverityWarning}
}

// classifyHandlerError maps domain errors to chat replies, specific errors before their kinds
func classifyHandlerError(err error) *HandlerError {
	switch {
	case errors.Is(err, entity.ErrCaseLocked):
		return warning(err, render.ErrCaseLocked, "case locked")
	case errors.Is(err, entity.ErrStartRaceLost):
		return warning(err, render.ErrRaceLost, "start race lost")
	case errors.Is(err, entity.ErrSessionExpired):
		return warning(err, render.ErrSessionExpired, "session expired")
	case errors.Is(err, entity.ErrSessionCompleted), errors.Is(err, entity.ErrSessionNotActive):
		return warning(err, render.ErrSessionInactive, "session not active")
	case errors.Is(err, entity.ErrCaseNotFound):
		return warning(err, render.ErrCaseNotFound, "case not found")
	case errors.Is(err, entity.ErrRecommendationNotFound):
		return warning(err, render.MsgNoRecommendation, "recommendation not found")
	case errors.Is(err, entity.ErrNotFound):
		return warning(err, render.ErrSessionNotFound, "session not found")
	case errors.Is(err, entity.ErrForbidden):
		return warning(err, render.ErrForbidden, "forbidden")
	case errors.Is(err, entity.ErrInvalidInput):
		return warning(err, render.ErrInvalidInput, "invalid input")
	case errors.Is(err, context.DeadlineExceeded):
		return &HandlerError{Err: err, UserMessage: render.ErrTimeout, LogMessage: "operation timed out", Severity: SeverityError}
	default:
		return &HandlerError{Err: err, UserMessage: render.ErrGeneric, LogMessage: "handler error", Severity: SeverityError}
	}
}

// HandleError logs err with its severity and sends the matching reply
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	switch handlerErr.Severity {
	case SeverityError:
		ctxzap.Error(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	default:
		ctxzap.Warn(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	}

	h.sendMessage(chatID, handlerErr.UserMessage, nil)
}
