package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTP.Addr != ":8095" {
		t.Errorf("Addr = %q, want :8095", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.Database.Path != "challenges.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Leaderboard.Enabled {
		t.Error("leaderboard enabled by default")
	}

	epoch, err := cfg.EpochTime()
	if err != nil {
		t.Fatalf("EpochTime error: %v", err)
	}
	if epoch.Weekday() != time.Monday {
		t.Errorf("default epoch %v is not a Monday", epoch)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "http:\n  addr: \":9000\"\nchallenge:\n  epoch: \"2025-01-06\"\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.HTTP.Addr)
	}
	if cfg.Challenge.Epoch != "2025-01-06" {
		t.Errorf("Epoch = %q", cfg.Challenge.Epoch)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestEpochMustBeMonday(t *testing.T) {
	cfg := &Config{}
	cfg.Challenge.Epoch = "2024-01-02" // a Tuesday
	if _, err := cfg.EpochTime(); err == nil {
		t.Error("Tuesday epoch accepted")
	}

	cfg.Challenge.Epoch = "not-a-date"
	if _, err := cfg.EpochTime(); err == nil {
		t.Error("garbage epoch accepted")
	}
}
