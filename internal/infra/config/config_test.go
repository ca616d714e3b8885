package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/coffee_test")
	t.Setenv("ADMIN_IDS", "100, 200")
}

func TestLoad(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !cfg.IsAdmin(100) || !cfg.IsAdmin(200) {
			t.Error("admin IDs not parsed")
		}
		if cfg.IsAdmin(300) {
			t.Error("unexpected admin")
		}
		if cfg.CronSpecPairing != "0 10 * * 1" {
			t.Errorf("unexpected pairing cron default: %s", cfg.CronSpecPairing)
		}
		if cfg.FollowupDelay != 72*time.Hour {
			t.Errorf("unexpected follow-up delay default: %s", cfg.FollowupDelay)
		}
		if cfg.LogLevel != "info" || cfg.Environment != "development" {
			t.Errorf("unexpected log defaults: %s / %s", cfg.LogLevel, cfg.Environment)
		}
	})

	t.Run("missing token is an error", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TELEGRAM_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing TELEGRAM_TOKEN")
		}
	})

	t.Run("malformed admin list is an error", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ADMIN_IDS", "100,abc")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for malformed ADMIN_IDS")
		}
	})

	t.Run("follow-up delay override", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("FOLLOWUP_DELAY_HOURS", "24")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.FollowupDelay != 24*time.Hour {
			t.Errorf("got %s, want 24h", cfg.FollowupDelay)
		}

		t.Setenv("FOLLOWUP_DELAY_HOURS", "0")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for non-positive FOLLOWUP_DELAY_HOURS")
		}
	})
}
