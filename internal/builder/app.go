package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/visa-interview/internal/telegram"
	"go.uber.org/zap"
)

// eventWaiter drains background event deliveries
type eventWaiter interface {
	Wait()
}

// App represents the application with all its components
type App struct {
	server          *http.Server
	storage         *storage
	events          eventWaiter
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Start HTTP server in goroutine
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		a.storage.close()
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	// Graceful shutdown
	return a.shutdown()
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	waitEvents(a.events, a.shutdownTimeout, a.logger)

	a.logger.Info("Closing storage")
	a.storage.close()

	a.logger.Info("Application stopped gracefully")
	_ = a.logger.Sync()
	return nil
}

// BotApp runs the Telegram front-end over the same usecase as App
type BotApp struct {
	bot             telegram.Bot
	storage         *storage
	events          eventWaiter
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// Run starts the bot and blocks until shutdown
func (a *BotApp) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.logger.Info("Starting telegram bot")
	if err := a.bot.Start(ctx); err != nil {
		a.storage.close()
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	if err := a.bot.Stop(); err != nil {
		a.logger.Error("Error stopping bot", zap.Error(err))
	}

	waitEvents(a.events, a.shutdownTimeout, a.logger)

	a.logger.Info("Closing storage")
	a.storage.close()

	a.logger.Info("Telegram bot stopped gracefully")
	_ = a.logger.Sync()
	return nil
}

// waitEvents waits for pending event deliveries, at most timeout
func waitEvents(events eventWaiter, timeout time.Duration, logger *zap.Logger) {
	logger.Info("Waiting for pending event deliveries")

	done := make(chan struct{})
	go func() {
		events.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("Event deliveries did not finish before shutdown timeout")
	}
}
