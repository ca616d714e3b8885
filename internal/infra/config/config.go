package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken         string
	DatabaseURL           string
	AdminIDs              map[int64]bool // Static admin allowlist
	LogLevel              string
	Environment           string
	CronSpecPairing       string // Weekly pairing round
	CronSpecMidCycle      string // Mid-cycle nudge to currently-paired participants
	CronSpecReminderCheck string // Poll for due follow-up reminders
	FollowupDelay         time.Duration
}

// IsAdmin reports whether the given Telegram ID is in the admin allowlist.
func (c *AppConfig) IsAdmin(id int64) bool {
	return c.AdminIDs[id]
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDsStr := os.Getenv("ADMIN_IDS")
	if adminIDsStr == "" {
		return nil, fmt.Errorf("ADMIN_IDS is not set")
	}
	cfg.AdminIDs = make(map[int64]bool)
	for _, part := range strings.Split(adminIDsStr, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", part, err)
		}
		cfg.AdminIDs[id] = true
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecPairing = os.Getenv("CRON_SPEC_PAIRING")
	if cfg.CronSpecPairing == "" {
		cfg.CronSpecPairing = "0 10 * * 1" // Default: 10:00 every Monday
	}

	cfg.CronSpecMidCycle = os.Getenv("CRON_SPEC_MIDCYCLE")
	if cfg.CronSpecMidCycle == "" {
		cfg.CronSpecMidCycle = "0 10 * * 4" // Default: 10:00 every Thursday
	}

	cfg.CronSpecReminderCheck = os.Getenv("CRON_SPEC_REMINDER_CHECK")
	if cfg.CronSpecReminderCheck == "" {
		cfg.CronSpecReminderCheck = "*/5 * * * *" // Default: every 5 minutes
	}

	followupHoursStr := os.Getenv("FOLLOWUP_DELAY_HOURS")
	if followupHoursStr == "" {
		cfg.FollowupDelay = 72 * time.Hour // Default: 3 days after pairing
	} else {
		hours, err := strconv.Atoi(followupHoursStr)
		if err != nil || hours < 1 {
			return nil, fmt.Errorf("invalid FOLLOWUP_DELAY_HOURS: %q", followupHoursStr)
		}
		cfg.FollowupDelay = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}
