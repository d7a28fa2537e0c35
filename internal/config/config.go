// Package config provides configuration types and loading for the
// engagement bot. Values come from the environment (optionally seeded from a
// .env file by the caller), layered over defaults.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the root configuration struct.
type Config struct {
	Bot      BotConfig
	Twitter  TwitterConfig
	Brain    BrainConfig
	Storage  StorageConfig
	Telegram TelegramConfig
	Server   ServerConfig
}

// BotConfig groups pipeline behaviour settings.
type BotConfig struct {
	// UserID is the bot account's platform user ID; mentions authored by it
	// are never answered.
	UserID   string `envconfig:"BOT_USER_ID"`
	Username string `envconfig:"BOT_USERNAME"`
	// SeedMentionID initializes the cursor when no record exists yet.
	SeedMentionID string        `envconfig:"BOT_SEED_MENTION_ID"`
	PollInterval  time.Duration `envconfig:"BOT_POLL_INTERVAL"`
	// FailureCooldown is waited before releasing the run guard after a
	// failed cycle, throttling retry storms.
	FailureCooldown time.Duration `envconfig:"BOT_FAILURE_COOLDOWN"`
	BatchSize       int           `envconfig:"BOT_BATCH_SIZE"`
	BatchPause      time.Duration `envconfig:"BOT_BATCH_PAUSE"`
	MaxRetries      int           `envconfig:"BOT_MAX_RETRIES"`
}

// TwitterConfig configures the platform adapter.
type TwitterConfig struct {
	BaseURL     string `envconfig:"TWITTER_BASE_URL"`
	BearerToken string `envconfig:"TWITTER_BEARER_TOKEN"`
}

// BrainConfig configures reply generation. When Endpoint is set the eliza
// HTTP service is used; otherwise the Gemini fallback requires an API key.
type BrainConfig struct {
	Endpoint     string `envconfig:"ELIZA_ENDPOINT"`
	AgentName    string `envconfig:"ELIZA_AGENT"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
}

// StorageConfig selects the durable store. DatabaseURL wins; the embedded
// sqlite file is the fallback.
type StorageConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH"`
}

// TelegramConfig configures the optional operator notifier.
type TelegramConfig struct {
	Token  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID string `envconfig:"TELEGRAM_CHAT_ID"`
}

// ServerConfig configures the health endpoint.
type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Bot: BotConfig{
			Username:        "MuseOfTruth",
			PollInterval:    15 * time.Second,
			FailureCooldown: 60 * time.Second,
			BatchSize:       10,
			BatchPause:      5 * time.Second,
			MaxRetries:      3,
		},
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com/2",
		},
		Brain: BrainConfig{
			AgentName: "MuseofTruth",
		},
		Storage: StorageConfig{
			SQLitePath: "data/bot.db",
		},
		Server: ServerConfig{
			Addr: ":3001",
		},
	}
}

// Load builds the configuration from defaults plus environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process env config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Bot.UserID == "" {
		return fmt.Errorf("BOT_USER_ID is required")
	}
	if c.Bot.BatchSize <= 0 {
		return fmt.Errorf("BOT_BATCH_SIZE must be positive")
	}
	if c.Bot.MaxRetries < 0 {
		return fmt.Errorf("BOT_MAX_RETRIES must not be negative")
	}
	return nil
}
