package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"BROWSER_DRIVER", "WEBDRIVER_URL", "BROWSER_DRIVER_PATH", "BROWSER_DRIVER_PORT",
	"CHROME_BINARY_PATH", "CHROME_PROFILE_DIR", "BROWSER_STATE_PATH", "START_URL", "HEADLESS",
	"FAIL_ON_STALE_LOCATE", "CONTINUE_ON_ERROR", "HOLD_OPEN", "HISTORY_BACKEND",
	"HISTORY_PATH", "HISTORY_LIMIT", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverSelenium, cfg.Driver)
	assert.Equal(t, "http://127.0.0.1:9515", cfg.RemoteURL())
	assert.Equal(t, 9515, cfg.DriverPort)
	assert.False(t, cfg.Headless)
	assert.False(t, cfg.FailOnStaleLocate)
	assert.True(t, cfg.ContinueOnError)
	assert.Zero(t, cfg.HoldOpen)
	assert.Equal(t, HistoryFile, cfg.HistoryBackend)
	assert.Equal(t, "history.json", filepath.Base(cfg.HistoryPath))
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BROWSER_DRIVER", "Playwright")
	t.Setenv("HEADLESS", "on")
	t.Setenv("FAIL_ON_STALE_LOCATE", "true")
	t.Setenv("CONTINUE_ON_ERROR", "no")
	t.Setenv("HOLD_OPEN", "5")
	t.Setenv("HISTORY_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverPlaywright, cfg.Driver)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.FailOnStaleLocate)
	assert.False(t, cfg.ContinueOnError)
	assert.Equal(t, 5*time.Second, cfg.HoldOpen)
	assert.Equal(t, HistoryRedis, cfg.HistoryBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestFromEnvHoldOpenDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOLD_OPEN", "1500ms")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.HoldOpen)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"BROWSER_DRIVER":      "netscape",
		"HEADLESS":            "sometimes",
		"BROWSER_DRIVER_PORT": "ninety",
		"HOLD_OPEN":           "-2s",
		"HISTORY_BACKEND":     "floppy",
		"LOG_LEVEL":           "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestRemoteURL(t *testing.T) {
	cfg := &Config{WebDriverURL: "http://grid:4444/wd/hub"}
	assert.Equal(t, "http://grid:4444/wd/hub", cfg.RemoteURL())

	cfg.DriverPath = "/usr/bin/chromedriver"
	assert.Empty(t, cfg.RemoteURL())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("START_URL=https://example.com\nHISTORY_BACKEND=none\n"), 0644))

	// godotenv does not override variables already present, so unset the cleared ones
	require.NoError(t, os.Unsetenv("START_URL"))
	require.NoError(t, os.Unsetenv("HISTORY_BACKEND"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.StartURL)
	assert.Equal(t, HistoryNone, cfg.HistoryBackend)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: logrus.WarnLevel}
	logger := cfg.NewLogger()
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}
