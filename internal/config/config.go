package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"derrclan.com/study-desk/internal/verses"
)

type Config struct {
	// Harvest
	BaseURL     string
	OutputPath  string
	Timeout     time.Duration
	Backoff     time.Duration
	MaxAttempts int
	PaceMin     time.Duration
	PaceMax     time.Duration
	RateLimit   float64
	Chapters    []verses.Chapter
	CacheDB     string

	// Server
	ServerAddr string
	VersesFile string

	// Run report
	Mail MailConfig

	// Logging
	LogLevel  string
	LogFormat string
}

type MailConfig struct {
	Domain    string
	APIKey    string
	Sender    string
	Recipient string
}

// Enabled reports whether every setting needed to send mail is present.
func (m MailConfig) Enabled() bool {
	return m.Domain != "" && m.APIKey != "" && m.Sender != "" && m.Recipient != ""
}

// Load reads the environment, after loading a .env file from the working
// directory when there is one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL:    strings.TrimSpace(os.Getenv("HARVEST_BASE_URL")),
		OutputPath: getEnv("HARVEST_OUTPUT", "verses.json"),
		CacheDB:    os.Getenv("HARVEST_CACHE_DB"),
		ServerAddr: getEnv("SERVER_ADDR", ":42069"),
		VersesFile: getEnv("VERSES_FILE", "verses.json"),
		Mail: MailConfig{
			Domain:    os.Getenv("MAILGUN_DOMAIN"),
			APIKey:    os.Getenv("MAILGUN_API_KEY"),
			Sender:    os.Getenv("MAILGUN_SENDER"),
			Recipient: os.Getenv("REPORT_RECIPIENT"),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.Timeout, err = getEnvDuration("HARVEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Backoff, err = getEnvDuration("HARVEST_BACKOFF", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.PaceMin, err = getEnvDuration("HARVEST_PACE_MIN", 400*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PaceMax, err = getEnvDuration("HARVEST_PACE_MAX", 600*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PaceMax < cfg.PaceMin {
		return nil, fmt.Errorf("HARVEST_PACE_MAX (%v) is below HARVEST_PACE_MIN (%v)", cfg.PaceMax, cfg.PaceMin)
	}
	if cfg.MaxAttempts, err = getEnvInt("HARVEST_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("HARVEST_MAX_ATTEMPTS must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.RateLimit, err = getEnvFloat("HARVEST_RATE_LIMIT", 0); err != nil {
		return nil, err
	}

	cfg.Chapters = verses.DefaultChapters
	if s := os.Getenv("HARVEST_CHAPTERS"); s != "" {
		if cfg.Chapters, err = verses.ParseChapters(s); err != nil {
			return nil, fmt.Errorf("invalid HARVEST_CHAPTERS: %w", err)
		}
	}

	return cfg, nil
}

// ValidateHarvest checks the settings only the harvester needs.
func (c *Config) ValidateHarvest() error {
	if c.BaseURL == "" {
		return errors.New("HARVEST_BASE_URL is not set")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("HARVEST_BASE_URL must be an http(s) URL, got %q", c.BaseURL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, value)
	}
	return d, nil
}
