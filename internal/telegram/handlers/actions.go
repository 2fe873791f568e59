package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/pkg/logger"
	"github.com/futig/visa-interview/internal/telegram/render"
	"github.com/futig/visa-interview/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const confirmReset = "reset"

// loadSession returns the chat state, replying and returning nil when no session is attached
func (h *BaseHandler) loadSession(ctx context.Context, msg *Message) (*state.ChatState, error) {
	st, err := h.states.Load(ctx, msg.UserID)
	if err != nil {
		return nil, fmt.Errorf("load chat state: %w", err)
	}
	if !st.HasSession() {
		h.sendMessage(msg.ChatID, render.MsgNoSession, nil)
		return nil, nil
	}
	return st, nil
}

// advance shows what follows step. A terminal state without a recommendation
// is finished through Next so the chat always lands on a question or a result.
func (h *BaseHandler) advance(ctx context.Context, msg *Message, st *state.ChatState, step *entity.InterviewStep) error {
	if !step.IsComplete() && (step.State == nil || step.State.IsTerminal()) {
		next, err := h.interview.Next(ctx, st.SessionID, InterviewUserID(msg.UserID))
		if err != nil {
			return err
		}
		step = next
	}

	if step.IsComplete() {
		return h.showRecommendation(ctx, msg, st, step.Recommendation)
	}

	q := step.State.Next
	st.QuestionKey = q.Key
	st.QuestionKind = q.Kind
	st.OptionValues = st.OptionValues[:0]
	for _, opt := range q.Options {
		st.OptionValues = append(st.OptionValues, opt.Value)
	}
	if err := h.states.Save(ctx, st); err != nil {
		return err
	}

	h.sendMessage(msg.ChatID,
		render.RenderQuestion(q, step.State.AnsweredCount, step.State.Candidates),
		h.keyboard.QuestionKeyboard(q),
	)
	return nil
}

func (h *BaseHandler) showRecommendation(ctx context.Context, msg *Message, st *state.ChatState, rec *entity.Recommendation) error {
	st.ClearQuestion()
	if err := h.states.Save(ctx, st); err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.RenderRecommendation(rec), h.keyboard.ResultKeyboard(rec.IsLocked()))
	return nil
}

func (h *BaseHandler) start(ctx context.Context, msg *Message, st *state.ChatState, caseID string) error {
	step, err := h.interview.Start(ctx, caseID, InterviewUserID(msg.UserID))
	if err != nil {
		return err
	}

	ctxzap.Info(ctx, "interview started from telegram",
		zap.String("case_id", caseID),
		zap.String("session_id", step.Session.ID),
	)

	ctx = logger.WithSession(ctx, step.Session.ID)
	if err := h.states.Attach(ctx, st, caseID, step.Session.ID); err != nil {
		return err
	}
	return h.advance(ctx, msg, st, step)
}

func (h *BaseHandler) next(ctx context.Context, msg *Message, st *state.ChatState) error {
	step, err := h.interview.Next(ctx, st.SessionID, InterviewUserID(msg.UserID))
	if err != nil {
		return err
	}
	return h.advance(ctx, msg, st, step)
}

func (h *BaseHandler) answer(ctx context.Context, msg *Message, st *state.ChatState, value string) error {
	result, err := h.interview.Answer(ctx, st.SessionID, InterviewUserID(msg.UserID), st.QuestionKey, value)
	if errors.Is(err, entity.ErrNarrowingDone) {
		return h.next(ctx, msg, st)
	}
	if err != nil {
		return err
	}

	ctxzap.Debug(ctx, "answer recorded",
		zap.String("question_key", st.QuestionKey),
		zap.Int("step", result.Answer.StepNumber),
	)

	return h.advance(ctx, msg, st, result.Step)
}

func (h *BaseHandler) complete(ctx context.Context, msg *Message, st *state.ChatState) error {
	rec, err := h.interview.Complete(ctx, st.SessionID, InterviewUserID(msg.UserID))
	if err != nil {
		return err
	}
	return h.showRecommendation(ctx, msg, st, rec)
}

func (h *BaseHandler) selectVisa(ctx context.Context, msg *Message, st *state.ChatState, code string) error {
	rec, err := h.interview.SelectDirectly(ctx, st.SessionID, InterviewUserID(msg.UserID), code)
	if err != nil {
		return err
	}
	return h.showRecommendation(ctx, msg, st, rec)
}

func (h *BaseHandler) chooseVisa(ctx context.Context, msg *Message, st *state.ChatState) error {
	p, err := h.interview.Progress(ctx, st.SessionID, InterviewUserID(msg.UserID))
	if err != nil {
		return err
	}
	if p.Session.Status != entity.SessionStatusActive {
		h.sendMessage(msg.ChatID, render.ErrSessionInactive, nil)
		return nil
	}

	h.sendMessage(msg.ChatID, render.MsgChooseVisa, h.keyboard.CandidatesKeyboard(p.RemainingVisaCodes))
	return nil
}

func (h *BaseHandler) progress(ctx context.Context, msg *Message, st *state.ChatState) error {
	p, err := h.interview.Progress(ctx, st.SessionID, InterviewUserID(msg.UserID))
	if err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.RenderProgress(p), nil)
	return nil
}

func (h *BaseHandler) askReset(ctx context.Context, msg *Message, st *state.ChatState) error {
	st.PendingConfirmation = confirmReset
	if err := h.states.Save(ctx, st); err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.MsgConfirmReset, h.keyboard.ConfirmKeyboard(confirmReset))
	return nil
}

func (h *BaseHandler) reset(ctx context.Context, msg *Message, st *state.ChatState) error {
	step, err := h.interview.Reset(ctx, st.SessionID, InterviewUserID(msg.UserID))
	if err != nil {
		return err
	}

	ctxzap.Info(ctx, "interview reset from telegram",
		zap.String("previous_session_id", st.SessionID),
		zap.String("session_id", step.Session.ID),
	)

	if err := h.states.Attach(ctx, st, st.CaseID, step.Session.ID); err != nil {
		return err
	}
	return h.advance(ctx, msg, st, step)
}

func (h *BaseHandler) lock(ctx context.Context, msg *Message, st *state.ChatState) error {
	if err := h.interview.Lock(ctx, st.CaseID, InterviewUserID(msg.UserID)); err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.MsgLocked, h.keyboard.ResultKeyboard(true))
	return nil
}

func (h *BaseHandler) history(ctx context.Context, msg *Message, caseID string) error {
	history, err := h.interview.History(ctx, caseID, InterviewUserID(msg.UserID))
	if err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.RenderHistory(history), nil)
	return nil
}

func (h *BaseHandler) report(ctx context.Context, msg *Message, caseID string, format entity.ResultFormat) error {
	h.sendMessage(msg.ChatID, render.MsgPreparingReport, nil)

	report, err := h.interview.Report(ctx, caseID, InterviewUserID(msg.UserID), format)
	if err != nil {
		return err
	}

	if h.sender == nil {
		return nil
	}
	return h.sender.SendDocument(msg.ChatID, report.FileName, report.Content)
}
