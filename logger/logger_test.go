package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsclf/config"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with JSON format", func(t *testing.T) {
		log, err := New(&config.LogConfig{Level: "info", Format: "json"})

		assert.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("creates logger with console format", func(t *testing.T) {
		log, err := New(&config.LogConfig{Level: "debug", Format: "console"})

		assert.NoError(t, err)
		assert.True(t, log.Core().Enabled(-1))
	})

	t.Run("defaults to info level for invalid level", func(t *testing.T) {
		log, err := New(&config.LogConfig{Level: "loud", Format: "json"})

		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(-1))
		assert.True(t, log.Core().Enabled(0))
	})

	t.Run("writes rotated file when configured", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "service.log")
		log, err := New(&config.LogConfig{
			Level:      "info",
			Format:     "console",
			File:       path,
			MaxSizeMB:  1,
			MaxBackups: 1,
		})
		require.NoError(t, err)

		log.Info("models loaded")
		_ = log.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"models loaded"`)
	})
}
