package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned when no Speechmatics credential is configured.
var ErrMissingAPIKey = errors.New("speechmatics API key is not set")

// Config holds the runtime configuration sourced from the environment.
type Config struct {
	APIKey       string
	APIURL       string
	Language     string
	PollInterval time.Duration
	PollTimeout  time.Duration
	LogLevel     string
}

// Defaults returns baseline configuration before environment overrides.
func Defaults() Config {
	return Config{
		APIURL:       "https://asr.api.speechmatics.com/v2",
		Language:     "en",
		PollInterval: 2 * time.Second,
		PollTimeout:  10 * time.Minute,
		LogLevel:     "info",
	}
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	cfg := Defaults()

	cfg.APIKey = strings.TrimSpace(os.Getenv("SPEECHMATICS_API_KEY"))
	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	if v := strings.TrimSpace(os.Getenv("SPEECHMATICS_API_URL")); v != "" {
		cfg.APIURL = strings.TrimSuffix(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("SPEECHMATICS_LANGUAGE")); v != "" {
		cfg.Language = v
	}
	if v := strings.TrimSpace(os.Getenv("SPEECHMATICS_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	interval, err := durationEnv("SPEECHMATICS_POLL_INTERVAL_SECONDS", cfg.PollInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.PollInterval = interval

	timeout, err := durationEnv("SPEECHMATICS_POLL_TIMEOUT_SECONDS", cfg.PollTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.PollTimeout = timeout

	return cfg, nil
}

// durationEnv parses a positive integer seconds value from the environment.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}
