// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed snapshot of everything the commands read from Viper.
// Load resolves precedence (flags, config file, ORO_* environment) once so
// the rest of the code never touches Viper directly.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Provider ProviderConfig
	Logging  LoggingConfig
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr      string
	JWTSecret string
}

// ProviderConfig selects and tunes the categorization provider.
type ProviderConfig struct {
	Name     string
	APIKey   string
	Model    string
	Deadline time.Duration
}

// LoggingConfig controls the slog default logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load builds the configuration snapshot from Viper and environment
// variables. It follows this precedence:
// 1. Viper configuration (from config file or ORO_ env vars)
// 2. Direct environment variables (JWT_SECRET, OPENAI_API_KEY, ...)
// 3. Default values
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path: "$HOME/.local/share/oro/oro.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Provider: ProviderConfig{
			Name:     "mock",
			Deadline: 400 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}

	if v := viper.GetString("database.path"); v != "" {
		cfg.Database.Path = v
	}
	cfg.Database.Path = ExpandPath(cfg.Database.Path)

	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := viper.GetString("server.jwt_secret"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if cfg.Server.JWTSecret == "" {
		cfg.Server.JWTSecret = os.Getenv("JWT_SECRET")
	}

	if v := viper.GetString("provider.name"); v != "" {
		cfg.Provider.Name = v
	}
	if v := viper.GetString("provider.api_key"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := viper.GetString("provider.model"); v != "" {
		cfg.Provider.Model = v
	}
	if v := viper.GetDuration("provider.deadline"); v > 0 {
		cfg.Provider.Deadline = v
	}

	if v := viper.GetString("logging.level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("logging.format"); v != "" {
		cfg.Logging.Format = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the snapshot for values no command could work with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Provider.Deadline <= 0 {
		return fmt.Errorf("provider deadline must be positive")
	}

	return nil
}
