package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/futig/visa-interview/internal/config"
	"github.com/futig/visa-interview/internal/pkg/logger"
	"github.com/futig/visa-interview/internal/telegram/handlers"
	"github.com/futig/visa-interview/internal/telegram/keyboard"
	"github.com/futig/visa-interview/internal/telegram/middleware"
	"github.com/futig/visa-interview/internal/telegram/render"
	"github.com/futig/visa-interview/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	sender       *handlers.MessageSender
	keyboard     *keyboard.Builder
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// New creates a new Telegram bot
func New(cfg *config.TelegramConfig, stateManager *state.Manager, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	bot := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		sender:       handlers.NewMessageSender(api, logger),
		keyboard:     keyboard.NewBuilder(),
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		stopChan:     make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, bot.sendError, render.ErrGeneric)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		bot.sendError,
		render.ErrRateLimited,
	)

	return bot, nil
}

// Start starts receiving updates
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops receiving updates and waits for in-flight handlers
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.cfg.ShutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", b.cfg.ShutdownTimeout),
		)
		return errors.New("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to the handler of its kind
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		UserID:    message.From.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	handlerState := handlers.HandlerStateTextAnswer
	if message.IsCommand() {
		handlerState = handlers.HandlerStateCommand
		msg.Command = message.Command()
		msg.CommandArgs = message.CommandArguments()
	}

	b.dispatch(ctx, handlerState, msg)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(query.ID, "")
		return
	}

	if _, err := keyboard.ParseCallback(query.Data); err != nil {
		ctxzap.Warn(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.answerCallback(query.ID, "❌")
		return
	}

	msg := &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	// answer right away so Telegram stops the button spinner
	b.answerCallback(query.ID, "")

	b.dispatch(ctx, handlers.HandlerStateCallback, msg)
}

// dispatch loads the chat state once for the update and runs the handler.
// Updates of one user run one at a time so their state writes do not interleave.
func (b *Bot) dispatch(ctx context.Context, handlerState string, msg *handlers.Message) {
	handler, exists := b.handlers[handlerState]
	if !exists {
		ctxzap.Warn(ctx, "no handler for state", zap.String("state", handlerState))
		b.sendError(msg.ChatID, render.ErrGeneric)
		return
	}

	ctx = logger.AddFields(ctx,
		zap.Int64("telegram_user_id", msg.UserID),
		zap.String("state", handlerState),
	)

	unlock := b.stateManager.Lock(msg.UserID)
	defer unlock()

	st, err := b.stateManager.Load(ctx, msg.UserID)
	if err != nil {
		ctxzap.Error(ctx, "failed to load chat state", zap.Error(err))
		b.sendError(msg.ChatID, render.ErrGeneric)
		return
	}
	ctx = state.WithState(ctx, st)

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		b.sendError(msg.ChatID, render.ErrGeneric)
	}
}

// sendError sends a plain text reply, used by middlewares as their Notifier
func (b *Bot) sendError(chatID int64, text string) {
	_ = b.sender.Send(chatID, text, nil)
}

func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// RegisterHandler registers a handler for a state
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// GetSender returns the message sender (for handlers)
func (b *Bot) GetSender() handlers.Sender {
	return b.sender
}

// GetStateManager returns the state manager (for handlers)
func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}
