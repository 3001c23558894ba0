// Package config loads the gateway configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// PublishFailurePolicy values for PUBLISH_FAILURE_POLICY.
const (
	// PolicyLog logs every publish failure at warn and moves on.
	PolicyLog = "log"
	// PolicyBreak additionally trips a circuit breaker after repeated
	// failures, logging state transitions at error severity for alerting.
	PolicyBreak = "break"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	TenantID    string `env:"TENANT_ID"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// SettingsCacheEncryptionKey is the hex-encoded AES key sealing broker
	// credentials in the shared Redis cache. Only the Postgres settings
	// table holds the secret in the clear.
	SettingsCacheEncryptionKey string `env:"SETTINGS_CACHE_ENCRYPTION_KEY"`

	// BrokerSettingsTTL bounds how long a rotated credential can stay
	// unseen by the in-process settings cache.
	BrokerSettingsTTL time.Duration `env:"BROKER_SETTINGS_TTL" default:"60s"`

	PublishTimeout       time.Duration `env:"PUBLISH_TIMEOUT" default:"2s"`
	PublishFailurePolicy string        `env:"PUBLISH_FAILURE_POLICY" default:"break"`

	AuthRatePerSecond float64 `env:"AUTH_RATE_PER_SECOND" default:"20"`
	AuthBurst         int     `env:"AUTH_BURST" default:"40"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":                  cfg.DatabaseURL,
		"REDIS_URL":                     cfg.RedisURL,
		"TENANT_ID":                     cfg.TenantID,
		"SETTINGS_CACHE_ENCRYPTION_KEY": cfg.SettingsCacheEncryptionKey,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.BrokerSettingsTTL <= 0 {
		return fmt.Errorf("BROKER_SETTINGS_TTL must be positive, got %v", cfg.BrokerSettingsTTL)
	}
	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("PUBLISH_TIMEOUT must be positive, got %v", cfg.PublishTimeout)
	}
	if cfg.PublishFailurePolicy != PolicyLog && cfg.PublishFailurePolicy != PolicyBreak {
		return fmt.Errorf("PUBLISH_FAILURE_POLICY must be %q or %q, got %q", PolicyLog, PolicyBreak, cfg.PublishFailurePolicy)
	}
	if cfg.AuthRatePerSecond <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_SECOND must be positive, got %v", cfg.AuthRatePerSecond)
	}

	return nil
}
