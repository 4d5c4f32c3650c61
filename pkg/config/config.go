package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	httpAdapter "github.com/marmos91/deckd/pkg/adapter/http"
	"github.com/spf13/viper"
)

// Config represents the complete deckd configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DECKD_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Database Configuration Pattern:
// Each database driver has its own option set. The Database section contains
// driver-specific maps (database.mysql, database.sqlite) and only the one
// matching database.type is decoded by CreateDBPool.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains process-wide settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Database selects the relational store backing the connection pool
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Adapters contains protocol adapter configurations
	Adapters AdaptersConfig `mapstructure:"adapters" yaml:"adapters"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// ServerConfig contains process-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for adapters to drain
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics controls the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// MetricsConfig controls metrics collection and exposure.
type MetricsConfig struct {
	// Enabled turns on Prometheus collection and the /metrics server
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the TCP port of the metrics HTTP server
	Port int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
}

// DatabaseConfig specifies the connection pool and its backing store.
//
// The Type field determines which driver is used.
// Only the corresponding driver-specific section is used.
type DatabaseConfig struct {
	// Type specifies the database driver
	// Valid values: mysql, sqlite
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=mysql sqlite"`

	// PoolSize is the number of connections opened eagerly at startup.
	// It should exceed the peak number of concurrent database operations,
	// since Acquire blocks without a timeout when the pool is exhausted.
	PoolSize int `mapstructure:"pool_size" yaml:"pool_size" validate:"gte=1"`

	// MySQL contains MySQL-specific configuration
	// Only used when Type = "mysql"
	MySQL map[string]any `mapstructure:"mysql" yaml:"mysql"`

	// SQLite contains SQLite-specific configuration
	// Only used when Type = "sqlite"
	SQLite map[string]any `mapstructure:"sqlite" yaml:"sqlite"`
}

// AdaptersConfig contains all protocol adapter configurations.
type AdaptersConfig struct {
	// HTTP contains the HTTP/1.1 server configuration.
	// Uses the http.HTTPConfig type directly to avoid duplication.
	HTTP httpAdapter.HTTPConfig `mapstructure:"http" yaml:"http"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use DECKD_ prefix and underscores
	// Example: DECKD_ADAPTERS_HTTP_PORT=9000
	v.SetEnvPrefix("DECKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/deckd/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		// An explicit path that does not exist is reported by the OS, not viper.
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "deckd")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "deckd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
