package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MinimalFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "debug"

adapters:
  http:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 8, cfg.Database.PoolSize)
	assert.Equal(t, 8080, cfg.Adapters.HTTP.Port)
	assert.Equal(t, 4, cfg.Adapters.HTTP.WorkerCount)
	assert.Equal(t, 1<<20, cfg.Adapters.HTTP.MaxRequestSize)
	assert.Zero(t, cfg.Adapters.HTTP.ReadTimeout)
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Adapters.HTTP.Enabled)
	assert.Equal(t, "0.0.0.0", cfg.Adapters.HTTP.Host)
	assert.Equal(t, "deckd.db", cfg.Database.SQLite["path"])
}

func TestLoad_MissingExplicitFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Adapters.HTTP.Port)
}

func TestLoad_Durations(t *testing.T) {
	path := writeConfig(t, `
server:
  shutdown_timeout: 10s
adapters:
  http:
    enabled: true
    port: 8081
    read_timeout: 2s
    metrics_log_interval: 1m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 2*time.Second, cfg.Adapters.HTTP.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Adapters.HTTP.MetricsLogInterval)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: INFO
adapters:
  http:
    enabled: true
    port: 8081
`)
	t.Setenv("DECKD_ADAPTERS_HTTP_PORT", "9000")
	t.Setenv("DECKD_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Adapters.HTTP.Port)
	assert.Equal(t, "WARN", cfg.Logging.Level)
}

func TestLoad_MySQL(t *testing.T) {
	path := writeConfig(t, `
database:
  type: mysql
  pool_size: 2
  mysql:
    host: db.internal
    user: deckd
    password: secret
    name: decks
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, 2, cfg.Database.PoolSize)

	opts, err := decodeMySQLOptions(cfg.Database.MySQL)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", opts.Host)
	assert.Equal(t, 3306, opts.Port)
	assert.Equal(t, "utf8mb4", opts.Charset)
	assert.Equal(t, "decks", opts.Name)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "logging: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
database:
  type: postgres
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "Database.Type")
}

func TestGetConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "deckd"), GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "deckd", "config.yaml"), GetDefaultConfigPath())
	assert.False(t, ConfigExists())
}
