package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Server.Metrics.Port)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 8, cfg.Database.PoolSize)
	assert.Equal(t, "127.0.0.1", cfg.Database.MySQL["host"])
	assert.Equal(t, 3306, cfg.Database.MySQL["port"])
	assert.Equal(t, "utf8mb4", cfg.Database.MySQL["charset"])
	assert.Equal(t, "deckd.db", cfg.Database.SQLite["path"])

	http := cfg.Adapters.HTTP
	assert.True(t, http.Enabled)
	assert.Equal(t, "0.0.0.0", http.Host)
	assert.Equal(t, 8080, http.Port)
	assert.Equal(t, 4, http.WorkerCount)
	assert.Equal(t, 1<<20, http.MaxRequestSize)
	assert.Equal(t, 4096, http.ReadChunkSize)
	assert.Zero(t, http.ReadTimeout)
	assert.Zero(t, http.WriteTimeout)
	assert.Equal(t, 5*time.Minute, http.MetricsLogInterval)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "warn", Format: "json", Output: "stderr"},
		Server:  ServerConfig{ShutdownTimeout: time.Second},
		Database: DatabaseConfig{
			Type:     "MySQL",
			PoolSize: 3,
			MySQL:    map[string]any{"host": "db", "port": 3307},
		},
	}
	cfg.Adapters.HTTP.Port = 9000
	cfg.Adapters.HTTP.WorkerCount = 16

	ApplyDefaults(cfg)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, 3, cfg.Database.PoolSize)
	assert.Equal(t, "db", cfg.Database.MySQL["host"])
	assert.Equal(t, 3307, cfg.Database.MySQL["port"])
	assert.Equal(t, 9000, cfg.Adapters.HTTP.Port)
	assert.Equal(t, 16, cfg.Adapters.HTTP.WorkerCount)
}

func TestApplyDefaults_HTTPEnabled(t *testing.T) {
	t.Run("unconfigured section is enabled", func(t *testing.T) {
		cfg := &Config{}
		ApplyDefaults(cfg)
		assert.True(t, cfg.Adapters.HTTP.Enabled)
	})

	t.Run("explicit disable with a port is kept", func(t *testing.T) {
		cfg := &Config{}
		cfg.Adapters.HTTP.Port = 8081
		ApplyDefaults(cfg)
		assert.False(t, cfg.Adapters.HTTP.Enabled)
	})
}
