package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the organizer.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	PINCode        string
	ReportTime     string
	ReportInterval time.Duration
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying sane defaults.
func Load() (Config, error) {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PINCode:        strings.TrimSpace(os.Getenv("PIN_CODE")),
		ReportTime:     strings.TrimSpace(os.Getenv("REPORT_TIME")),
		ReportInterval: parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "organizer.db"
	}

	if cfg.PINCode == "" {
		cfg.PINCode = "1109"
	}
	if err := validatePIN(cfg.PINCode); err != nil {
		return cfg, err
	}

	// REPORT_TIME pins the digest to a wall-clock time and takes precedence
	// over the interval schedule.
	if cfg.ReportTime != "" {
		if _, err := time.Parse("15:04", cfg.ReportTime); err != nil {
			return cfg, fmt.Errorf("REPORT_TIME must be HH:MM: %w", err)
		}
	}

	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func validatePIN(pin string) error {
	if len(pin) != 4 {
		return fmt.Errorf("PIN_CODE must be exactly 4 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("PIN_CODE must be exactly 4 digits")
		}
	}
	return nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
