// Package config loads process configuration from the environment once at
// start-up.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds every setting the server reads from the environment
type Config struct {
	Port   int    `env:"PORT" envDefault:"5000"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// JWTSecret verifies bearer tokens from the identity provider
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	SessionStore string `env:"SESSION_STORE" envDefault:"redis"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"teachcreate.db"`

	TransitionPolicy string `env:"TRANSITION_POLICY" envDefault:"permissive"`
	JoinCodeAttempts int    `env:"JOIN_CODE_ATTEMPTS" envDefault:"5"`

	DiscordWebhookID    string `env:"DISCORD_WEBHOOK_ID"`
	DiscordWebhookToken string `env:"DISCORD_WEBHOOK_TOKEN"`
	AnnounceTone        string `env:"ANNOUNCE_TONE" envDefault:"neutral"`

	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
}

// Load reads an optional .env file and parses the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have a fixed set of choices
func (c *Config) Validate() error {
	switch c.AppEnv {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.AppEnv)
	}

	switch c.SessionStore {
	case StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreRedis, StoreSQLite, c.SessionStore)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}

	if c.JoinCodeAttempts <= 0 {
		return fmt.Errorf("JOIN_CODE_ATTEMPTS must be positive, got %d", c.JoinCodeAttempts)
	}

	if (c.DiscordWebhookID == "") != (c.DiscordWebhookToken == "") {
		return errors.New("DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN must be set together")
	}

	return nil
}

// IsProduction reports whether internal error detail should be hidden
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// AnnouncementsEnabled reports whether a Discord webhook is configured
func (c *Config) AnnouncementsEnabled() bool {
	return c.DiscordWebhookID != "" && c.DiscordWebhookToken != ""
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NewLogger builds the process logger
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
