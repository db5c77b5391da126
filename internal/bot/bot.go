// Package bot implements the core lifecycle management and component
// orchestration for bunbot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"bunbot/internal/chatstore"
)

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	store     *chatstore.Store
	statePath string
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// New creates a new instance of the bot with all required dependencies.
func New(logger *slog.Logger, store *chatstore.Store, statePath string, tgBot *tgbot.Bot, scheduler *Scheduler) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		store:     store,
		statePath: statePath,
		tgBot:     tgBot,
		scheduler: scheduler,
	}
}

// Run starts the transport listener and the scheduler, and blocks until the
// context is cancelled or a component fails. A final state snapshot is
// written on the way out.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()

	if saveErr := b.store.Save(b.statePath); saveErr != nil {
		b.logger.Error("Failed to write final state snapshot", "error", saveErr)
	} else {
		b.logger.Info("Final state snapshot written", "path", b.statePath)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
