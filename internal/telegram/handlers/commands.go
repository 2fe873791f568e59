package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/pkg/logger"
	"github.com/futig/visa-interview/internal/telegram/keyboard"
	"github.com/futig/visa-interview/internal/telegram/render"
	"github.com/futig/visa-interview/internal/telegram/state"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
)

// CommandHandler handles slash commands
type CommandHandler struct {
	BaseHandler
}

func NewCommandHandler(
	sender Sender,
	states *state.Manager,
	interview InterviewUsecase,
	kb *keyboard.Builder,
) *CommandHandler {
	return &CommandHandler{
		BaseHandler: newBaseHandler(HandlerStateCommand, sender, states, interview, kb),
	}
}

func (h *CommandHandler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.WithAction(ctx, "/"+msg.Command)
	ctxzap.Info(ctx, "command received")

	var err error
	switch msg.Command {
	case "start":
		err = h.handleStart(ctx, msg)
	case "help":
		h.sendMessage(msg.ChatID, render.MsgHelp, nil)
	case "whoami":
		h.sendMessage(msg.ChatID, fmt.Sprintf(render.MsgWhoAmI, InterviewUserID(msg.UserID)), nil)
	case "cancel":
		err = h.handleCancel(ctx, msg)
	case "progress", "complete", "reset", "lock":
		err = h.withSession(ctx, msg, msg.Command)
	case "history", "report":
		err = h.handleCase(ctx, msg)
	default:
		h.sendMessage(msg.ChatID, render.MsgHelp, nil)
	}

	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}
	return nil
}

// handleStart begins an interview for the given case, or resumes the attached one
func (h *CommandHandler) handleStart(ctx context.Context, msg *Message) error {
	st, err := h.states.Load(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load chat state: %w", err)
	}

	caseID := strings.TrimSpace(msg.CommandArgs)
	if caseID == "" {
		if st.HasSession() {
			return h.next(ctx, msg, st)
		}
		h.sendMessage(msg.ChatID, render.MsgWelcome, nil)
		h.sendMessage(msg.ChatID, render.MsgNeedCaseID, nil)
		return nil
	}

	if _, err := uuid.Parse(caseID); err != nil {
		h.sendMessage(msg.ChatID, render.MsgNeedCaseID, nil)
		return nil
	}

	return h.start(ctx, msg, st, caseID)
}

func (h *CommandHandler) handleCancel(ctx context.Context, msg *Message) error {
	if err := h.states.Delete(ctx, msg.UserID); err != nil {
		return err
	}
	h.sendMessage(msg.ChatID, render.MsgDetached, nil)
	return nil
}

func (h *CommandHandler) withSession(ctx context.Context, msg *Message, command string) error {
	st, err := h.loadSession(ctx, msg)
	if err != nil || st == nil {
		return err
	}

	switch command {
	case "progress":
		return h.progress(ctx, msg, st)
	case "complete":
		return h.complete(ctx, msg, st)
	case "reset":
		return h.askReset(ctx, msg, st)
	default:
		return h.lock(ctx, msg, st)
	}
}

// handleCase serves case level commands; the case comes from the argument
// when it is a UUID, otherwise from the attached interview
func (h *CommandHandler) handleCase(ctx context.Context, msg *Message) error {
	args := strings.Fields(msg.CommandArgs)

	caseID := ""
	format := entity.FormatMarkdown
	for _, arg := range args {
		if _, err := uuid.Parse(arg); err == nil {
			caseID = arg
			continue
		}
		if f := entity.ResultFormat(strings.ToLower(arg)); f.IsValid() {
			format = f
		}
	}

	if caseID == "" {
		st, err := h.loadSession(ctx, msg)
		if err != nil || st == nil {
			return err
		}
		caseID = st.CaseID
	}

	if msg.Command == "history" {
		return h.history(ctx, msg, caseID)
	}
	return h.report(ctx, msg, caseID, format)
}
