package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads configuration from the process environment, applying defaults
// for everything optional. A .env file in the working directory is honored
// when present; a missing one is not an error. Load fails when a required
// value is absent or any value does not parse, so the process never starts
// half-configured.
func Load() (*Config, error) {
	// Best effort; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	var err error

	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)

	cfg.Gateway.BaseURL = strings.TrimRight(getEnv("WAHA_BASE_URL", ""), "/")
	cfg.Gateway.APIKey = getEnv("WAHA_API_KEY", "")
	cfg.Gateway.Session = getEnv("WAHA_SESSION_NAME", cfg.Gateway.Session)
	cfg.Gateway.WebhookURL = getEnv("WEBHOOK_URL", cfg.Gateway.WebhookURL)
	if cfg.Gateway.Timeout, err = getEnvAsDuration("WAHA_TIMEOUT", cfg.Gateway.Timeout); err != nil {
		return nil, err
	}

	cfg.Trigger.Prefix = getEnv("TRIGGER_PREFIX", cfg.Trigger.Prefix)
	if cfg.Trigger.StripPrefix, err = getEnvAsBool("TRIGGER_STRIP_PREFIX", cfg.Trigger.StripPrefix); err != nil {
		return nil, err
	}
	if cfg.Trigger.ReplyToSelf, err = getEnvAsBool("REPLY_TO_SELF", cfg.Trigger.ReplyToSelf); err != nil {
		return nil, err
	}

	cfg.AI.APIKey = getEnv("OPENAI_API_KEY", "")
	cfg.AI.BaseURL = getEnv("OPENAI_API_BASE", "")
	cfg.AI.Model = getEnv("OPENAI_MODEL", cfg.AI.Model)
	if cfg.AI.MaxTokens, err = getEnvAsInt("AI_MAX_TOKENS", cfg.AI.MaxTokens); err != nil {
		return nil, err
	}
	if cfg.AI.Temperature, err = getEnvAsFloat("AI_TEMPERATURE", cfg.AI.Temperature); err != nil {
		return nil, err
	}
	if cfg.AI.Timeout, err = getEnvAsDuration("AI_TIMEOUT", cfg.AI.Timeout); err != nil {
		return nil, err
	}
	cfg.AI.SystemPrompt = getEnv("AI_SYSTEM_PROMPT", cfg.AI.SystemPrompt)

	if cfg.Reply.MaxLength, err = getEnvAsInt("REPLY_MAX_LENGTH", cfg.Reply.MaxLength); err != nil {
		return nil, err
	}
	if cfg.Reply.Delay, err = getEnvAsDuration("REPLY_DELAY", cfg.Reply.Delay); err != nil {
		return nil, err
	}
	if cfg.Reply.Quote, err = getEnvAsBool("REPLY_QUOTE", cfg.Reply.Quote); err != nil {
		return nil, err
	}

	if cfg.Session.Autostart, err = getEnvAsBool("SESSION_AUTOSTART", cfg.Session.Autostart); err != nil {
		return nil, err
	}
	if cfg.Session.WatchInterval, err = getEnvAsDuration("SESSION_WATCH_INTERVAL", cfg.Session.WatchInterval); err != nil {
		return nil, err
	}
	if cfg.Session.DedupCacheSize, err = getEnvAsInt("DEDUP_CACHE_SIZE", cfg.Session.DedupCacheSize); err != nil {
		return nil, err
	}

	cfg.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Log.Level))
	cfg.Log.File = getEnv("LOG_FILE", "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required values are present and all values are usable.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("WAHA_BASE_URL is required")
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR must not be empty")
	}
	if c.Gateway.Session == "" {
		return fmt.Errorf("WAHA_SESSION_NAME must not be empty")
	}
	if c.Gateway.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL must not be empty")
	}
	if c.Trigger.Prefix == "" {
		return fmt.Errorf("TRIGGER_PREFIX must not be empty")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("WAHA_TIMEOUT must be positive")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 2")
	}
	if c.Reply.MaxLength <= 0 {
		return fmt.Errorf("REPLY_MAX_LENGTH must be positive")
	}
	if c.Reply.Delay < 0 {
		return fmt.Errorf("REPLY_DELAY must not be negative")
	}
	if c.Session.WatchInterval <= 0 {
		return fmt.Errorf("SESSION_WATCH_INTERVAL must be positive")
	}
	if c.Session.DedupCacheSize <= 0 {
		return fmt.Errorf("DEDUP_CACHE_SIZE must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	return nil
}

// getEnv returns the value of key, or fallback when unset or empty.
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func getEnvAsInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

// getEnvAsDuration parses values like "30s", "2m" or "1h30m".
func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
