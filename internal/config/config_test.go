package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("BAT_LOG_LEVEL", "")

	t.Run("Defaults when optional file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"), true)
		require.NoError(t, err)
		assert.Equal(t, BackendFile, cfg.Storage.Backend)
		assert.False(t, cfg.Storage.Compress)
		assert.Equal(t, 256, cfg.Storage.CacheSize)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("Missing required file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"), false)
		assert.Error(t, err)
	})

	t.Run("File overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `{"log_level":"debug","storage":{"backend":"badger","compress":true}}`)
		cfg, err := Load(path, false)
		require.NoError(t, err)
		assert.Equal(t, BackendBadger, cfg.Storage.Backend)
		assert.True(t, cfg.Storage.Compress)
		assert.Equal(t, 256, cfg.Storage.CacheSize)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("Environment overrides level", func(t *testing.T) {
		t.Setenv("BAT_LOG_LEVEL", "error")
		cfg, err := Load("", true)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"storage":`), false)
		assert.Error(t, err)
	})

	t.Run("Invalid backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"storage":{"backend":"s3"}}`), false)
		assert.ErrorContains(t, err, "unknown storage backend")
	})

	t.Run("Invalid cache size", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"storage":{"cache_size":0}}`), false)
		assert.ErrorContains(t, err, "cache_size")
	})
}
