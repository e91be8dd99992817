package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Config is the process configuration, read from the environment.
type Config struct {
	DatabaseURL   string
	ListenAddr    string
	TelegramToken string
	// WebhookSecret is the path segment Telegram must present on webhook
	// deliveries.
	WebhookSecret string
	// NotificationWindow is how long after creation an incident can still be
	// acknowledged or flagged inaccurate.
	NotificationWindow time.Duration
	// StreamInterval is the polling period of the /stream/link feeds.
	StreamInterval time.Duration
	LogLevel       slog.Level
}

func loadConfig() (Config, error) {
	cfg := Config{
		ListenAddr:         ":3000",
		NotificationWindow: time.Hour,
		StreamInterval:     10 * time.Second,
		LogLevel:           slog.LevelInfo,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is not set")
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.WebhookSecret = os.Getenv("TELEGRAM_WEBHOOK_SECRET")
	if v := os.Getenv("NOTIFICATION_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("NOTIFICATION_WINDOW: %w", err)
		}
		cfg.NotificationWindow = d
	}
	if v := os.Getenv("STREAM_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("STREAM_INTERVAL: %w", err)
		}
		cfg.StreamInterval = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}
