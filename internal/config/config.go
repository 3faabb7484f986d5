// Package config loads service configuration from an optional YAML file with
// environment-variable fallback.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Challenge   ChallengeConfig
	Leaderboard LeaderboardConfig
	Log         LogConfig
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8095"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"challenges.db"`
}

type ChallengeConfig struct {
	// Epoch is the first challenge Monday, YYYY-MM-DD, midnight UTC.
	Epoch string `yaml:"epoch" env:"CHALLENGE_EPOCH" env-default:"2024-01-01"`
}

type LeaderboardConfig struct {
	Enabled bool   `yaml:"enabled" env:"LEADERBOARD_ENABLED" env-default:"false"`
	BaseURL string `yaml:"base_url" env:"LEADERBOARD_BASE_URL"`
	APIKey  string `yaml:"api_key" env:"LEADERBOARD_API_KEY"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from path when the file exists, falling back to
// environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if _, err := cfg.EpochTime(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EpochTime parses the configured epoch date. The epoch must be a Monday;
// the whole week-index scheme is anchored to it.
func (c *Config) EpochTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.Challenge.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: bad epoch %q: %w", c.Challenge.Epoch, err)
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("config: epoch %q is a %s, must be a Monday", c.Challenge.Epoch, t.Weekday())
	}
	return t, nil
}
