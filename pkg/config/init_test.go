package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInitConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := InitConfig(false)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfigPath(), path)
	assert.True(t, ConfigExists())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	for _, section := range []string{
		"# deckd Configuration File",
		"logging:",
		"server:",
		"database:",
		"adapters:",
		"shutdown_timeout: 30s",
		"worker_count: 4",
	} {
		assert.Contains(t, content, section)
	}

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed), "generated config is not valid YAML")
}

func TestInitConfig_ExistingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := InitConfig(false)
	require.NoError(t, err)

	_, err = InitConfig(false)
	assert.ErrorContains(t, err, "already exists")

	_, err = InitConfig(true)
	assert.NoError(t, err)
}

func TestInitConfigToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deckd.yaml")
	require.NoError(t, InitConfigToPath(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := GetDefaultConfig()
	assert.Equal(t, want.Logging, cfg.Logging)
	assert.Equal(t, want.Server, cfg.Server)
	assert.Equal(t, want.Adapters, cfg.Adapters)
	assert.Equal(t, want.Database.Type, cfg.Database.Type)
	assert.Equal(t, want.Database.PoolSize, cfg.Database.PoolSize)
	assert.Equal(t, "deckd.db", cfg.Database.SQLite["path"])
}
