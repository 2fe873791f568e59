package telegram

import (
	"context"
	"fmt"

	"github.com/futig/visa-interview/internal/config"
	"github.com/futig/visa-interview/internal/telegram/bot"
	"github.com/futig/visa-interview/internal/telegram/handlers"
	"github.com/futig/visa-interview/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	interviewUC handlers.InterviewUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, interviewUC, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

func registerHandlers(b *bot.Bot, interviewUC handlers.InterviewUsecase, logger *zap.Logger) {
	sender := b.GetSender()
	stateManager := b.GetStateManager()
	kb := b.GetKeyboard()

	all := []handlers.Handler{
		handlers.NewCommandHandler(sender, stateManager, interviewUC, kb),
		handlers.NewCallbackHandler(sender, stateManager, interviewUC, kb),
		handlers.NewTextAnswerHandler(sender, stateManager, interviewUC, kb),
	}
	for _, h := range all {
		b.RegisterHandler(h)
	}

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", len(all)),
	)
}
