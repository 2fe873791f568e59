package middleware

import (
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type notifications struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (n *notifications) notify(chatID int64, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[int64][]string)
	}
	n.sent[chatID] = append(n.sent[chatID], text)
}

func textUpdate(userID, chatID int64) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: "hello",
		},
	}
}

func TestRateLimiter_PerUserBurstAndSingleWarning(t *testing.T) {
	n := &notifications{}
	rl := NewRateLimiterMiddleware(1, 2, zap.NewNop(), n.notify, "slow down")
	now := time.Now()

	assert.True(t, rl.allow(1, 10, now))
	assert.True(t, rl.allow(1, 10, now))
	assert.False(t, rl.allow(1, 10, now))
	assert.False(t, rl.allow(1, 10, now))

	// another user has its own bucket
	assert.True(t, rl.allow(2, 20, now))

	assert.Equal(t, []string{"slow down"}, n.sent[10])
	assert.Empty(t, n.sent[20])
}

func TestRateLimiter_HandleSkipsNext(t *testing.T) {
	rl := NewRateLimiterMiddleware(1, 1, zap.NewNop(), nil, "")

	calls := 0
	next := func(tgbotapi.Update) { calls++ }

	rl.Handle(textUpdate(5, 5), next)
	rl.Handle(textUpdate(5, 5), next)
	rl.Handle(tgbotapi.Update{}, next)

	assert.Equal(t, 2, calls)
}

func TestRecovery_NotifiesChat(t *testing.T) {
	n := &notifications{}
	m := NewRecoveryMiddleware(zap.NewNop(), n.notify, "oops")

	assert.NotPanics(t, func() {
		m.Handle(textUpdate(3, 30), func(tgbotapi.Update) { panic("boom") })
	})
	assert.Equal(t, []string{"oops"}, n.sent[30])
}

func TestUpdateType(t *testing.T) {
	cmd := textUpdate(1, 1)
	cmd.Message.Text = "/start"
	cmd.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

	assert.Equal(t, "command", updateType(cmd))
	assert.Equal(t, "text", updateType(textUpdate(1, 1)))
	assert.Equal(t, "callback", updateType(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 1}}}))
	assert.Equal(t, "other", updateType(tgbotapi.Update{}))
}
