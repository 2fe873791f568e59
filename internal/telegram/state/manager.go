package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const chatStateKey contextKey = "chat_state"

// FromContext retrieves the request scoped ChatState if available
func FromContext(ctx context.Context) (*ChatState, bool) {
	s, ok := ctx.Value(chatStateKey).(*ChatState)
	return s, ok
}

// WithState attaches a ChatState to ctx so one update loads it once
func WithState(ctx context.Context, s *ChatState) context.Context {
	return context.WithValue(ctx, chatStateKey, s)
}

// Manager manages chat states
type Manager struct {
	storage Storage
	locks   *userLocks
	now     func() time.Time
}

func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		locks:   newUserLocks(),
		now:     time.Now,
	}
}

// Lock holds off other updates of userID until the returned func is called.
// Load and Save of one update must run under it.
func (m *Manager) Lock(userID int64) (unlock func()) {
	return m.locks.lock(userID)
}

// Load returns the chat state of userID, a fresh one when none is stored.
// A state cached in ctx wins over storage.
func (m *Manager) Load(ctx context.Context, userID int64) (*ChatState, error) {
	if s, ok := FromContext(ctx); ok && s.UserID == userID {
		return s, nil
	}

	s, err := m.storage.Get(ctx, userID)
	if errors.Is(err, ErrChatStateNotFound) {
		return &ChatState{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat state from storage: %w", err)
	}

	return s, nil
}

func (m *Manager) Save(ctx context.Context, s *ChatState) error {
	s.UpdatedAt = m.now()

	if err := m.storage.Set(ctx, s); err != nil {
		return fmt.Errorf("save chat state to storage: %w", err)
	}

	return nil
}

// Attach points the chat at a new session and forgets everything else
func (m *Manager) Attach(ctx context.Context, s *ChatState, caseID, sessionID string) error {
	s.CaseID = caseID
	s.SessionID = sessionID
	s.PendingConfirmation = ""
	s.ClearQuestion()

	return m.Save(ctx, s)
}

func (m *Manager) Delete(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete chat state from storage: %w", err)
	}

	return nil
}
