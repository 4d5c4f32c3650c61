package config

import (
	"strings"
	"time"

	"github.com/marmos91/deckd/internal/protocol/http1"
	httpAdapter "github.com/marmos91/deckd/pkg/adapter/http"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Driver-specific option maps receive defaults for every driver so that
//     generated config files document all of them
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyAdaptersDefaults(&cfg.Adapters)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
}

// applyDatabaseDefaults sets database defaults.
func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Type == "" {
		cfg.Type = "sqlite"
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.PoolSize == 0 {
		cfg.PoolSize = 8
	}

	if cfg.MySQL == nil {
		cfg.MySQL = make(map[string]any)
	}
	if cfg.SQLite == nil {
		cfg.SQLite = make(map[string]any)
	}

	if _, ok := cfg.MySQL["host"]; !ok {
		cfg.MySQL["host"] = "127.0.0.1"
	}
	if _, ok := cfg.MySQL["port"]; !ok {
		cfg.MySQL["port"] = 3306
	}
	if _, ok := cfg.MySQL["charset"]; !ok {
		cfg.MySQL["charset"] = "utf8mb4"
	}
	if _, ok := cfg.SQLite["path"]; !ok {
		cfg.SQLite["path"] = "deckd.db"
	}
}

// applyAdaptersDefaults sets adapter defaults.
func applyAdaptersDefaults(cfg *AdaptersConfig) {
	// A config without an http section (port still 0) gets the adapter
	// enabled. An explicit "enabled: false" with a port keeps it disabled.
	if !cfg.HTTP.Enabled && cfg.HTTP.Port == 0 {
		cfg.HTTP.Enabled = true
	}

	applyHTTPDefaults(&cfg.HTTP)
}

// applyHTTPDefaults sets HTTP adapter defaults.
//
// ReadTimeout and WriteTimeout stay 0 (no deadline) unless configured.
func applyHTTPDefaults(cfg *httpAdapter.HTTPConfig) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxRequestSize == 0 {
		cfg.MaxRequestSize = http1.DefaultMaxRequestSize
	}
	if cfg.ReadChunkSize == 0 {
		cfg.ReadChunkSize = http1.DefaultReadChunkSize
	}
	if cfg.MetricsLogInterval == 0 {
		cfg.MetricsLogInterval = 5 * time.Minute
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Adapters: AdaptersConfig{
			HTTP: httpAdapter.HTTPConfig{
				Enabled: true,
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
