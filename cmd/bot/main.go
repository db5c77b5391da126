// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"bunbot/internal/acapela"
	"bunbot/internal/bot"
	"bunbot/internal/chatstore"
	"bunbot/internal/config"
	"bunbot/internal/dispatch"
	"bunbot/internal/intents"
	"bunbot/internal/logger"
	"bunbot/internal/telegram"
	"bunbot/internal/templates"
	"bunbot/internal/triggers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// chat store, templates, triggers, dispatcher, transport, scheduler),
// handles graceful shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format == "json")
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	store := chatstore.New(log)
	if err := store.Load(cfg.Data.StatePath); err != nil {
		log.Error("Failed to load chat state", "path", cfg.Data.StatePath, "error", err)
		return 1
	}

	resolver, err := templates.Load(filepath.Join(cfg.Data.Dir, "locales"), cfg.Bot.DefaultLocale, log)
	if err != nil {
		log.Error("Failed to load locale bundles", "error", err)
		return 1
	}

	entries, err := triggers.Load(cfg.Data.Dir, cfg.Bot.Locales, log)
	if err != nil {
		log.Error("Failed to load triggers", "error", err)
		return 1
	}
	log.Info("Trigger registry loaded", "entries", len(entries))

	voiceClient, err := acapela.New(cfg.Acapela.Username, cfg.Acapela.Password, log)
	if err != nil {
		log.Error("Failed to create acapela client", "error", err)
		return 1
	}

	handlers := telegram.NewHandlers(log, store, resolver, cfg.Telegram.AdminUID, cfg.Bot.DefaultLocale, cfg.Bot.AliveCutoff)

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.TrackMiddleware()),
		tgbot.WithDefaultHandler(handlers.Default),
	}
	tg, err := telegram.New(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	intentTable := intents.Register(intents.Deps{
		Logger:    log,
		Bot:       tg,
		Resolver:  resolver,
		Acapela:   voiceClient,
		Token:     cfg.Telegram.Token,
		AssetsDir: cfg.Data.Dir,
		TempDir:   cfg.Data.TempDir,
	})
	dispatcher, err := dispatch.New(entries, intentTable, log)
	if err != nil {
		log.Error("Failed to build dispatcher", "error", err)
		return 1
	}
	handlers.Bind(tg, dispatcher)

	sched, err := bot.NewScheduler(log, []bot.Task{
		bot.SnapshotTask(store, cfg.Data.StatePath, cfg.Bot.SnapshotInterval),
		bot.CacheCleanupTask(cfg.Data.TempDir, cfg.Bot.CacheMaxAge, log),
	})
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.New(log, store, cfg.Data.StatePath, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
