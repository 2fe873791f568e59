package handlers

import (
	"context"
	"strings"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/telegram/keyboard"
	"github.com/futig/visa-interview/internal/telegram/render"
	"github.com/futig/visa-interview/internal/telegram/state"
)

// TextAnswerHandler handles typed answers to free text questions
type TextAnswerHandler struct {
	BaseHandler
}

func NewTextAnswerHandler(
	sender Sender,
	states *state.Manager,
	interview InterviewUsecase,
	kb *keyboard.Builder,
) *TextAnswerHandler {
	return &TextAnswerHandler{
		BaseHandler: newBaseHandler(HandlerStateTextAnswer, sender, states, interview, kb),
	}
}

func (h *TextAnswerHandler) Handle(ctx context.Context, msg *Message) error {
	st, err := h.loadSession(ctx, msg)
	if err != nil || st == nil {
		return err
	}

	if st.QuestionKey == "" || st.QuestionKind != entity.QuestionKindText {
		h.sendMessage(msg.ChatID, render.MsgUseButtons, nil)
		return nil
	}

	if err := h.answer(ctx, msg, st, strings.TrimSpace(msg.Text)); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}
	return nil
}
