package app

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("CSRF_SECRET", "csrf")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "en-GB", cfg.PortalLocale)
	assert.Equal(t, 5, cfg.ReferenceMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.PGMigrate)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example.ac.uk,https://staff.example.ac.uk")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"https://portal.example.ac.uk", "https://staff.example.ac.uk"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Run("missing secrets", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "")
		t.Setenv("CSRF_SECRET", "")
		_, err := LoadConfig()
		require.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := LoadConfig()
		require.Error(t, err)
	})
	t.Run("zero reference attempts", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REFERENCE_MAX_ATTEMPTS", "0")
		_, err := LoadConfig()
		require.Error(t, err)
	})
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "reference", "ABCD1234")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "ABCD1234", entry["reference"])
	assert.Equal(t, "INFO", slogLevel("bogus"))
}

func slogLevel(s string) string {
	return parseLevel(s).String()
}
