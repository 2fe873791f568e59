package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends a plain text message to a chat
type Notifier func(chatID int64, text string)

// updateIDs extracts the sender and chat of an update, zeros when absent
func updateIDs(update tgbotapi.Update) (userID, chatID int64) {
	switch {
	case update.Message != nil:
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
	}
	return userID, chatID
}

func updateType(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message == nil:
		return "other"
	case update.Message.IsCommand():
		return "command"
	case update.Message.Text != "":
		return "text"
	default:
		return "other"
	}
}
