/*
Package config loads runtime settings for the finance server and CLI.

SOURCES (later wins):
  1. Built-in defaults (SetDefaults)
  2. Config file: --config path, or finance.{yaml,toml,json} in
     $HOME/.config/finance or the working directory
  3. .env file in the working directory
  4. FINANCE_* environment variables (FINANCE_SERVER_PORT, FINANCE_DB_PATH, ...)
  5. Command-line flags bound by cmd/finance

KEYS:
  server.port             HTTP port (default 8080)
  server.allowed_origins  CORS origins
  db.backend              sqlite or memory
  db.path                 SQLite file, ":memory:" allowed
  log.level               debug, info, warn, error
  log.format              text or json
  reminders.enabled       run the reminder scheduler
  reminders.schedule      cron expression (5 fields)
  reminders.window_days   how far ahead upcoming payments are reported
  projection.max_days     longest range one projection may walk (default ~5 years)
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/warp/finance-engine/finance"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "FINANCE"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"db"`
	Log        LogConfig        `mapstructure:"log"`
	Reminders  RemindersConfig  `mapstructure:"reminders"`
	Projection ProjectionConfig `mapstructure:"projection"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RemindersConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"`
	WindowDays int    `mapstructure:"window_days"`
}

type ProjectionConfig struct {
	MaxDays int `mapstructure:"max_days"`
}

// SetDefaults registers every key so AutomaticEnv can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("db.backend", "sqlite")
	v.SetDefault("db.path", "./data/finance.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 8 * * *")
	v.SetDefault("reminders.window_days", finance.DefaultReminderWindow)
	v.SetDefault("projection.max_days", finance.DefaultMaxProjectionDays)
}

// Load reads configuration into a Config. cfgFile may be empty, in which
// case a missing config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "finance"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("finance")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.DB.Backend {
	case "memory":
	case "sqlite":
		if c.DB.Path == "" {
			problems = append(problems, "database path cannot be empty when using sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid db backend '%s': must be one of [memory sqlite]", c.DB.Backend))
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.Log.Format))
	}

	if c.Reminders.Enabled {
		if _, err := cron.ParseStandard(c.Reminders.Schedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid reminders schedule '%s': %v", c.Reminders.Schedule, err))
		}
	}
	if c.Reminders.WindowDays < 0 {
		problems = append(problems, fmt.Sprintf("invalid reminders window %d: must not be negative", c.Reminders.WindowDays))
	}

	if c.Projection.MaxDays < 1 {
		problems = append(problems, fmt.Sprintf("invalid projection max_days %d: must be at least 1", c.Projection.MaxDays))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// EnsureDBDir creates the directory holding the SQLite file.
func (c *Config) EnsureDBDir() error {
	if c.DB.Backend != "sqlite" || c.DB.Path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(c.DB.Path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create database directory '%s': %w", dir, err)
	}
	return nil
}

// NewLogger builds a logrus logger from the log settings.
func NewLogger(c LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", c.Level)
	}
	logger.SetLevel(level)

	switch c.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format: %s", c.Format)
	}
	return logger, nil
}
