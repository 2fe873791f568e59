package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	logger  *zap.Logger
	notify  Notifier
	message string
}

func NewRecoveryMiddleware(logger *zap.Logger, notify Notifier, message string) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger:  logger,
		notify:  notify,
		message: message,
	}
}

func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic recovered in telegram handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
				zap.Int("update_id", update.UpdateID),
			)

			if _, chatID := updateIDs(update); chatID != 0 && m.notify != nil {
				m.notify(chatID, m.message)
			}
		}
	}()

	next(update)
}
