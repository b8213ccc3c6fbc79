// Package config loads application configuration from YAML files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SUBWATCH_"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	CORS      CORSConfig      `koanf:"cors"`
	Billing   BillingConfig   `koanf:"billing"`
	Reminders RemindersConfig `koanf:"reminders"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// BillingConfig holds billing webhook settings.
type BillingConfig struct {
	WebhookSecret string `koanf:"webhook_secret"`
}

// RemindersConfig holds reminder pipeline settings.
type RemindersConfig struct {
	Enabled  bool                 `koanf:"enabled"`
	LeadTime time.Duration        `koanf:"lead_time"`
	Worker   WorkerConfig         `koanf:"worker"`
	Retry    RetryConfig          `koanf:"retry"`
	Email    EmailSenderConfig    `koanf:"email"`
	Telegram TelegramSenderConfig `koanf:"telegram"`
}

// WorkerConfig holds reminder worker settings.
type WorkerConfig struct {
	BatchSize    int           `koanf:"batch_size"`
	PollInterval time.Duration `koanf:"poll_interval"`
	NumWorkers   int           `koanf:"num_workers"`
}

// RetryConfig holds reminder retry settings.
type RetryConfig struct {
	MaxAttempts       int           `koanf:"max_attempts"`
	InitialBackoff    time.Duration `koanf:"initial_backoff"`
	MaxBackoff        time.Duration `koanf:"max_backoff"`
	BackoffMultiplier float64       `koanf:"backoff_multiplier"`
}

// EmailSenderConfig holds SMTP reminder settings.
type EmailSenderConfig struct {
	Enabled      bool   `koanf:"enabled"`
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUser     string `koanf:"smtp_user"`
	SMTPPassword string `koanf:"smtp_password"`
	FromAddress  string `koanf:"from_address"`
	ToAddress    string `koanf:"to_address"`
}

// TelegramSenderConfig holds telegram reminder settings.
type TelegramSenderConfig struct {
	Enabled   bool    `koanf:"enabled"`
	BotToken  string  `koanf:"bot_token"`
	ChatID    string  `koanf:"chat_id"`
	RateLimit float64 `koanf:"rate_limit"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Reminders: RemindersConfig{
			Enabled:  true,
			LeadTime: 72 * time.Hour,
			Worker: WorkerConfig{
				BatchSize:    100,
				PollInterval: 30 * time.Second,
				NumWorkers:   2,
			},
			Retry: RetryConfig{
				MaxAttempts:       3,
				InitialBackoff:    1 * time.Second,
				MaxBackoff:        5 * time.Minute,
				BackoffMultiplier: 2.0,
			},
			Telegram: TelegramSenderConfig{
				RateLimit: 20,
			},
		},
	}
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the SUBWATCH_ prefix with double underscores
// separating sections, e.g. SUBWATCH_DATABASE__URL, SUBWATCH_SERVER__PORT.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".",
		)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error: got %q", c.Log.Level))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text: got %q", c.Log.Format))
	}

	if c.Reminders.Enabled && c.Reminders.LeadTime <= 0 {
		errs = append(errs, errors.New("reminders.lead_time must be positive"))
	}

	return errors.Join(errs...)
}
