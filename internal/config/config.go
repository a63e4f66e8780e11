// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port          string
	PublicURL     string
	DBPath        string
	LogLevel      slog.Level
	SessionTTL    time.Duration
	SweepInterval time.Duration
	// AccessPassword enables the access gate when non-empty.
	AccessPassword string
	Model          ModelConfig
}

// ModelConfig controls how reports are generated.
type ModelConfig struct {
	// APIKey may be empty; the portal then runs in "not connected" mode.
	APIKey          string
	BaseURL         string
	Name            string
	Language        string
	EnableSearch    bool
	Temperature     *float32
	MaxOutputTokens int32
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	maxOutputTokens, err := getEnvInt32("MAX_OUTPUT_TOKENS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		PublicURL:      getEnv("PUBLIC_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/portal.db"),
		LogLevel:       getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		SessionTTL:     getEnvDuration("SESSION_TTL", 12*time.Hour),
		SweepInterval:  getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		AccessPassword: getEnv("ACCESS_PASSWORD", ""),
		Model: ModelConfig{
			APIKey:          strings.TrimSpace(getEnv("GOOGLE_API_KEY", "")),
			BaseURL:         getEnv("GENAI_BASE_URL", ""),
			Name:            strings.TrimSpace(getEnv("MODEL_NAME", "gemini-2.0-flash")),
			Language:        getEnv("REPORT_LANGUAGE", "Korean"),
			EnableSearch:    getEnvBool("ENABLE_SEARCH", false),
			Temperature:     getEnvFloat32Ptr("TEMPERATURE"),
			MaxOutputTokens: maxOutputTokens,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("MODEL_NAME cannot be empty")
	}
	if c.Model.MaxOutputTokens < 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be >= 0")
	}
	if t := c.Model.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("TEMPERATURE must be between 0 and 2")
	}
	return nil
}

// Connected reports whether an API key is configured.
func (c *Config) Connected() bool {
	return c.Model.APIKey != ""
}

// GateEnabled reports whether the access password gate is on.
func (c *Config) GateEnabled() bool {
	return c.AccessPassword != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	return c.PublicURL == "" ||
		strings.Contains(c.PublicURL, "localhost") ||
		strings.Contains(c.PublicURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// getEnvInt32 returns fallback for an unset or empty key and an error for
// values that are not integers or do not fit in 32 bits.
func getEnvInt32(key string, fallback int32) (int32, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a 32-bit integer: %w", key, err)
	}
	return int32(n), nil
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

// getEnvFloat32Ptr returns nil when key is unset or unparsable so the model default applies.
func getEnvFloat32Ptr(key string) *float32 {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil {
		return nil
	}
	v := float32(f)
	return &v
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
