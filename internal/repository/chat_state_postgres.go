package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/futig/visa-interview/internal/repository/sqlc"
	"github.com/futig/visa-interview/internal/telegram/state"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ state.Storage = &ChatStatePostgres{}

// ChatStatePostgres keeps Telegram chat bindings in PostgreSQL so they survive bot restarts.
// States idle for longer than ttl read as missing.
type ChatStatePostgres struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
	ttl     time.Duration
	now     func() time.Time
}

func NewChatStatePostgres(db *pgxpool.Pool, ttl time.Duration) *ChatStatePostgres {
	return &ChatStatePostgres{
		db:      db,
		queries: sqlc.New(db),
		ttl:     ttl,
		now:     time.Now,
	}
}

// chatStateData is the part of a chat state stored as JSON
type chatStateData struct {
	QuestionKey         string              `json:"question_key,omitempty"`
	QuestionKind        entity.QuestionKind `json:"question_kind,omitempty"`
	OptionValues        []string            `json:"option_values,omitempty"`
	PendingConfirmation string              `json:"pending_confirmation,omitempty"`
}

func (r *ChatStatePostgres) Get(ctx context.Context, userID int64) (*state.ChatState, error) {
	row, err := r.queries.GetChatState(ctx, sqlc.GetChatStateParams{
		UserID:    userID,
		NotBefore: toTimestamptz(r.now().Add(-r.ttl)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, state.ErrChatStateNotFound
		}
		return nil, fmt.Errorf("query chat state: %w", err)
	}

	return toStateChatState(&row)
}

func (r *ChatStatePostgres) Set(ctx context.Context, s *state.ChatState) error {
	params, err := toDBChatStateParams(s)
	if err != nil {
		return err
	}

	if err := r.queries.UpsertChatState(ctx, params); err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}

	return nil
}

func (r *ChatStatePostgres) Delete(ctx context.Context, userID int64) error {
	if err := r.queries.DeleteChatState(ctx, userID); err != nil {
		return fmt.Errorf("delete chat state: %w", err)
	}

	return nil
}

// Prune removes states that have been idle for longer than ttl
func (r *ChatStatePostgres) Prune(ctx context.Context) (int64, error) {
	n, err := r.queries.DeleteStaleChatStates(ctx, toTimestamptz(r.now().Add(-r.ttl)))
	if err != nil {
		return 0, fmt.Errorf("delete stale chat states: %w", err)
	}
	return n, nil
}

func toStateChatState(row *sqlc.TelegramChatState) (*state.ChatState, error) {
	var data chatStateData
	if len(row.StateData) > 0 {
		if err := json.Unmarshal(row.StateData, &data); err != nil {
			return nil, fmt.Errorf("decode chat state data: %w", err)
		}
	}

	s := &state.ChatState{
		UserID:              row.UserID,
		QuestionKey:         data.QuestionKey,
		QuestionKind:        data.QuestionKind,
		OptionValues:        data.OptionValues,
		PendingConfirmation: data.PendingConfirmation,
		UpdatedAt:           row.UpdatedAt.Time,
	}
	if row.CaseID.Valid {
		s.CaseID = uuidString(row.CaseID)
	}
	if row.SessionID.Valid {
		s.SessionID = uuidString(row.SessionID)
	}

	return s, nil
}

func toDBChatStateParams(s *state.ChatState) (sqlc.UpsertChatStateParams, error) {
	caseID, err := parseOptionalUUID(&s.CaseID, "case")
	if err != nil {
		return sqlc.UpsertChatStateParams{}, err
	}
	sessionID, err := parseOptionalUUID(&s.SessionID, "session")
	if err != nil {
		return sqlc.UpsertChatStateParams{}, err
	}

	data, err := json.Marshal(chatStateData{
		QuestionKey:         s.QuestionKey,
		QuestionKind:        s.QuestionKind,
		OptionValues:        s.OptionValues,
		PendingConfirmation: s.PendingConfirmation,
	})
	if err != nil {
		return sqlc.UpsertChatStateParams{}, fmt.Errorf("encode chat state data: %w", err)
	}

	return sqlc.UpsertChatStateParams{
		UserID:    s.UserID,
		CaseID:    caseID,
		SessionID: sessionID,
		StateData: data,
		UpdatedAt: toTimestamptz(s.UpdatedAt),
	}, nil
}
