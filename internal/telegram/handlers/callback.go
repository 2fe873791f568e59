package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/pkg/logger"
	"github.com/futig/visa-interview/internal/telegram/keyboard"
	"github.com/futig/visa-interview/internal/telegram/render"
	"github.com/futig/visa-interview/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles inline button clicks
type CallbackHandler struct {
	BaseHandler
}

func NewCallbackHandler(
	sender Sender,
	states *state.Manager,
	interview InterviewUsecase,
	kb *keyboard.Builder,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: newBaseHandler(HandlerStateCallback, sender, states, interview, kb),
	}
}

func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	ctx = logger.WithAction(ctx, data.Action)
	ctxzap.Debug(ctx, "callback received", zap.String("value", data.Value))

	st, err := h.loadSession(ctx, msg)
	if err != nil || st == nil {
		return err
	}

	if err := h.dispatch(ctx, msg, st, data); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}
	return nil
}

func (h *CallbackHandler) dispatch(ctx context.Context, msg *Message, st *state.ChatState, data *keyboard.CallbackData) error {
	switch data.Action {
	case keyboard.ActionAnswer:
		return h.handleAnswer(ctx, msg, st, data.Value)
	case keyboard.ActionSelect:
		return h.selectVisa(ctx, msg, st, data.Value)
	case keyboard.ActionConfirm:
		return h.handleConfirm(ctx, msg, st, data.Value)
	case keyboard.ActionDownload:
		return h.report(ctx, msg, st.CaseID, entity.ResultFormat(data.Value))
	case keyboard.ActionCommand:
		switch data.Value {
		case keyboard.CmdNext:
			return h.next(ctx, msg, st)
		case keyboard.CmdComplete:
			return h.complete(ctx, msg, st)
		case keyboard.CmdChoose:
			return h.chooseVisa(ctx, msg, st)
		case keyboard.CmdReset:
			return h.askReset(ctx, msg, st)
		case keyboard.CmdLock:
			return h.lock(ctx, msg, st)
		case keyboard.CmdProgress:
			return h.progress(ctx, msg, st)
		}
	}

	return fmt.Errorf("%w: unknown callback %s:%s", entity.ErrInvalidParameter, data.Action, data.Value)
}

// handleAnswer resolves the pressed button against the question on screen.
// A button of an older question re-shows the current one instead of answering.
func (h *CallbackHandler) handleAnswer(ctx context.Context, msg *Message, st *state.ChatState, value string) error {
	idx, err := strconv.Atoi(value)
	if err != nil || st.QuestionKey == "" || idx < 0 || idx >= len(st.OptionValues) {
		ctxzap.Debug(ctx, "stale answer button", zap.String("value", value))
		return h.next(ctx, msg, st)
	}

	return h.answer(ctx, msg, st, st.OptionValues[idx])
}

func (h *CallbackHandler) handleConfirm(ctx context.Context, msg *Message, st *state.ChatState, value string) error {
	pending := st.PendingConfirmation
	st.PendingConfirmation = ""

	if value == confirmReset && pending == confirmReset {
		return h.reset(ctx, msg, st)
	}

	if err := h.states.Save(ctx, st); err != nil {
		return err
	}
	h.sendMessage(msg.ChatID, render.MsgResetCancelled, nil)
	return nil
}
