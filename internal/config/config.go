package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting the bot needs. Values come from the
// environment (optionally seeded from a .env file by the caller).
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	TelegramToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	AdminIDs      []int64 `envconfig:"ADMIN_USER_IDS" required:"true"`

	// StorageDriver selects the record store backend: csv, sqlite,
	// postgres or memory.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"csv"`
	DataDir       string `envconfig:"DATA_DIR" default:"./data"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"./data/langsense.db"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisTLS      bool   `envconfig:"REDIS_TLS" default:"false"`

	HTTPListenAddr   string `envconfig:"HTTP_LISTEN_ADDR" default:":8080"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"langsense"`

	UpdateTimeout        time.Duration `envconfig:"UPDATE_TIMEOUT" default:"30s"`
	SendTimeout          time.Duration `envconfig:"SEND_TIMEOUT" default:"10s"`
	ConversationTTL      time.Duration `envconfig:"CONVERSATION_TTL" default:"1h"`
	BroadcastConcurrency int           `envconfig:"BROADCAST_CONCURRENCY" default:"8"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch cfg.StorageDriver {
	case "csv", "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	if len(cfg.AdminIDs) == 0 {
		return nil, fmt.Errorf("at least one admin id is required")
	}
	if cfg.BroadcastConcurrency <= 0 {
		cfg.BroadcastConcurrency = 1
	}

	return &cfg, nil
}

// IsAdmin reports whether the given Telegram id is on the allow-list.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
