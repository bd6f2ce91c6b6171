// Package config reads server settings from the environment.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults
//  2. a .env file in the working directory, if present (godotenv)
//  3. real environment variables
//
// godotenv never overwrites a variable that is already set, so (3) wins.
// viper does the typed reads.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinSecretLength is the shortest SESSION_SECRET accepted in production.
const MinSecretLength = 32

// devSecret signs cookies when SESSION_SECRET is unset outside production.
const devSecret = "dev-only-session-secret-change-me!!"

// Config is the resolved server configuration.
type Config struct {
	Port     int
	LogLevel slog.Level

	// DatabaseURL selects the relational backend. Empty means in-memory
	// storage and in-memory sessions.
	DatabaseURL    string
	DatabaseDriver string

	SessionSecret string
	Production    bool

	UploadDir string

	// EmailFrom enables SES delivery when set.
	EmailFrom  string
	AWSRegion  string
	AdminEmail string
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper resolves a Config from v. Tests pass a viper with values Set
// directly instead of touching the process environment.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("AWS_REGION", "us-east-1")

	cfg := &Config{
		Port:           v.GetInt("PORT"),
		DatabaseURL:    strings.TrimSpace(v.GetString("DATABASE_URL")),
		DatabaseDriver: strings.TrimSpace(v.GetString("DATABASE_DRIVER")),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		Production:     v.GetBool("PRODUCTION") || strings.EqualFold(v.GetString("NODE_ENV"), "production"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		EmailFrom:      strings.TrimSpace(v.GetString("EMAIL_FROM")),
		AWSRegion:      v.GetString("AWS_REGION"),
		AdminEmail:     strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT %d out of range", cfg.Port)
	}

	if cfg.SessionSecret == "" && !cfg.Production {
		cfg.SessionSecret = devSecret
	}
	if cfg.Production && len(cfg.SessionSecret) < MinSecretLength {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least %d characters in production", MinSecretLength)
	}
	return cfg, nil
}

// UsesDefaultSecret reports whether the development secret is in use.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == devSecret
}
