package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverSelenium   = "selenium"
	DriverPlaywright = "playwright"

	HistoryNone  = "none"
	HistoryFile  = "file"
	HistoryRedis = "redis"

	defaultWebDriverURL = "http://127.0.0.1:9515"
	defaultStateDir     = ".workflow_automation"
)

// Config holds runner settings read from the environment
type Config struct {
	// Browser
	Driver       string
	WebDriverURL string
	DriverPath   string
	DriverPort   int
	ChromeBinary string
	ProfileDir   string
	StatePath    string
	StartURL     string
	Headless     bool

	// Execution
	FailOnStaleLocate bool
	ContinueOnError   bool
	HoldOpen          time.Duration

	// History
	HistoryBackend string
	HistoryPath    string
	HistoryLimit   int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	LogLevel logrus.Level
}

// Load reads an optional .env file and then the process environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only
func FromEnv() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	stateDir := filepath.Join(homeDir, defaultStateDir)

	cfg := &Config{
		Driver:         strings.ToLower(getEnv("BROWSER_DRIVER", DriverSelenium)),
		WebDriverURL:   os.Getenv("WEBDRIVER_URL"),
		DriverPath:     os.Getenv("BROWSER_DRIVER_PATH"),
		ChromeBinary:   os.Getenv("CHROME_BINARY_PATH"),
		ProfileDir:     os.Getenv("CHROME_PROFILE_DIR"),
		StatePath:      os.Getenv("BROWSER_STATE_PATH"),
		StartURL:       os.Getenv("START_URL"),
		HistoryBackend: strings.ToLower(getEnv("HISTORY_BACKEND", HistoryFile)),
		HistoryPath:    getEnv("HISTORY_PATH", filepath.Join(stateDir, "history.json")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.DriverPort, err = getInt("BROWSER_DRIVER_PORT", 9515); err != nil {
		return nil, err
	}
	if cfg.Headless, err = getBool("HEADLESS", false); err != nil {
		return nil, err
	}
	if cfg.FailOnStaleLocate, err = getBool("FAIL_ON_STALE_LOCATE", false); err != nil {
		return nil, err
	}
	if cfg.ContinueOnError, err = getBool("CONTINUE_ON_ERROR", true); err != nil {
		return nil, err
	}
	if cfg.HoldOpen, err = getDuration("HOLD_OPEN", 0); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = getInt("HISTORY_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSelenium, DriverPlaywright:
	default:
		return fmt.Errorf("unsupported BROWSER_DRIVER %q (use %s or %s)", c.Driver, DriverSelenium, DriverPlaywright)
	}
	switch c.HistoryBackend {
	case HistoryNone, HistoryFile, HistoryRedis:
	default:
		return fmt.Errorf("unsupported HISTORY_BACKEND %q (use %s, %s or %s)", c.HistoryBackend, HistoryNone, HistoryFile, HistoryRedis)
	}
	if c.HoldOpen < 0 {
		return fmt.Errorf("HOLD_OPEN must not be negative")
	}
	return nil
}

// RemoteURL returns the WebDriver endpoint to attach to. Empty when a local
// chromedriver should be started instead.
func (c *Config) RemoteURL() string {
	if c.DriverPath != "" {
		return ""
	}
	if c.WebDriverURL != "" {
		return c.WebDriverURL
	}
	return defaultWebDriverURL
}

// NewLogger builds the shared logger
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
