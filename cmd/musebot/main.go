package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/samarth30/twitter-engagement-bot/internal/bot"
	"github.com/samarth30/twitter-engagement-bot/internal/brain"
	"github.com/samarth30/twitter-engagement-bot/internal/config"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
	"github.com/samarth30/twitter-engagement-bot/internal/server"
	"github.com/samarth30/twitter-engagement-bot/internal/sites/twitter"
	"github.com/samarth30/twitter-engagement-bot/internal/storage"
	"github.com/samarth30/twitter-engagement-bot/internal/ui/telegram"
)

func main() {
	godotenv.Load()
	fmt.Println("🤖 Twitter Engagement Bot Starting...")

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open state store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	myBrain, err := newBrain(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create brain", "error", err)
		os.Exit(1)
	}

	var notifier ports.Notifier
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != "" {
		notifier, err = telegram.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("Telegram notifier disabled", "error", err)
			notifier = nil
		} else {
			fmt.Println("📣 Notifier: Telegram")
		}
	}

	platform := twitter.NewClient(cfg.Twitter.BaseURL, cfg.Twitter.BearerToken, cfg.Bot.UserID, cfg.Bot.MaxRetries)
	poster := bot.NewPoster(platform, store, cfg.Bot.MaxRetries)
	processor := bot.NewProcessor(platform, myBrain, poster, cfg.Bot.UserID, cfg.Bot.BatchSize, cfg.Bot.BatchPause)
	scheduler := bot.NewScheduler(store, processor, notifier, cfg.Bot.PollInterval, cfg.Bot.FailureCooldown)

	healthSrv := server.New(cfg.Server.Addr, scheduler.Guard(), store)
	go server.Serve(healthSrv)

	fmt.Println("🚀 System fully operational.")

	if err := scheduler.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Scheduler exited", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)
}

// newStorage picks Postgres when DATABASE_URL is set, otherwise the embedded
// sqlite file.
func newStorage(ctx context.Context, cfg config.Config) (ports.Storage, func(), error) {
	if cfg.Storage.DatabaseURL != "" {
		pg, err := storage.NewPostgresStorage(ctx, cfg.Storage.DatabaseURL, cfg.Bot.SeedMentionID)
		if err != nil {
			return nil, nil, err
		}
		fmt.Println("🐘 Storage: PostgreSQL Connected")
		return pg, pg.Close, nil
	}

	lite, err := storage.NewSQLiteStorage(cfg.Storage.SQLitePath, cfg.Bot.SeedMentionID)
	if err != nil {
		return nil, nil, err
	}
	fmt.Println("📄 Storage: SQLite File Mode")
	return lite, func() { _ = lite.Close() }, nil
}

// newBrain prefers the eliza endpoint; the Gemini fallback is used when no
// endpoint is configured.
func newBrain(ctx context.Context, cfg config.Config) (ports.Brain, error) {
	if cfg.Brain.Endpoint != "" {
		fmt.Println("🧠 Brain: Eliza Endpoint")
		return brain.NewElizaBrain(cfg.Brain.Endpoint, cfg.Brain.AgentName), nil
	}
	b, err := brain.NewGeminiBrain(ctx, cfg.Brain.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	fmt.Println("🧠 Brain: Gemini")
	return b, nil
}
