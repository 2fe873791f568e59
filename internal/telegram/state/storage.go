package state

import (
	"context"
	"errors"
	"time"

	"github.com/futig/visa-interview/internal/entity"
)

var ErrChatStateNotFound = errors.New("chat state not found")

// ChatState maps a Telegram user to the interview they are running
type ChatState struct {
	UserID    int64
	CaseID    string
	SessionID string

	// Question currently shown with answer buttons
	QuestionKey  string
	QuestionKind entity.QuestionKind
	// OptionValues holds answer values by button index,
	// callback data is too small to carry them
	OptionValues []string

	// Confirmation for destructive actions ("reset")
	PendingConfirmation string

	UpdatedAt time.Time
}

// HasSession reports whether the chat is attached to an interview session
func (s *ChatState) HasSession() bool {
	return s.SessionID != ""
}

// ClearQuestion forgets the question that was on screen
func (s *ChatState) ClearQuestion() {
	s.QuestionKey = ""
	s.QuestionKind = ""
	s.OptionValues = nil
}

// Storage defines the interface for chat state persistence
type Storage interface {
	// Get returns ErrChatStateNotFound for unknown users
	Get(ctx context.Context, userID int64) (*ChatState, error)
	Set(ctx context.Context, state *ChatState) error
	Delete(ctx context.Context, userID int64) error
}
