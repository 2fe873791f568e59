package handlers

import (
	"context"

	"github.com/futig/visa-interview/internal/telegram/keyboard"
	"github.com/futig/visa-interview/internal/telegram/state"
)

// Handler state constants
const (
	HandlerStateCommand    = "COMMAND"
	HandlerStateCallback   = "CALLBACK"
	HandlerStateTextAnswer = "TEXT_ANSWER"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	CommandArgs  string
	CallbackData string
	CallbackID   string
}

// Handler defines the interface for state-specific handlers
type Handler interface {
	// Handle processes a message for this state
	Handle(ctx context.Context, msg *Message) error

	// GetState returns the state this handler manages
	GetState() string
}

// BaseHandler carries what every handler needs to run an interview from a chat
type BaseHandler struct {
	stateName string
	sender    Sender
	states    *state.Manager
	interview InterviewUsecase
	keyboard  *keyboard.Builder
}

func newBaseHandler(
	stateName string,
	sender Sender,
	states *state.Manager,
	interview InterviewUsecase,
	kb *keyboard.Builder,
) BaseHandler {
	return BaseHandler{
		stateName: stateName,
		sender:    sender,
		states:    states,
		interview: interview,
		keyboard:  kb,
	}
}

// GetState implements Handler
func (h *BaseHandler) GetState() string {
	return h.stateName
}

// sendMessage is a convenience wrapper for sender.Send; failures are logged by the sender
func (h *BaseHandler) sendMessage(chatID int64, text string, markup any) {
	if h.sender != nil {
		_ = h.sender.Send(chatID, text, markup)
	}
}

// validStates defines all valid handler states
var validStates = map[string]bool{
	HandlerStateCommand:    true,
	HandlerStateCallback:   true,
	HandlerStateTextAnswer: true,
}

// IsValidState checks if a state is valid for handler registration
func IsValidState(state string) bool {
	_, ok := validStates[state]
	return ok
}
