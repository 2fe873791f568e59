package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewMessageSender(bot *tgbotapi.BotAPI, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		bot:    bot,
		logger: logger,
	}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := s.bot.Send(msg); err != nil {
		s.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}

	return nil
}

// SendDocument uploads content as a file
func (s *MessageSender) SendDocument(chatID int64, fileName string, content []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: content,
	})

	if _, err := s.bot.Send(doc); err != nil {
		s.logger.Error("failed to send document",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("file_name", fileName),
		)
		return fmt.Errorf("send document: %w", err)
	}

	return nil
}
