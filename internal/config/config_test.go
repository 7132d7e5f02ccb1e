package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"derrclan.com/study-desk/internal/verses"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.OutputPath != "verses.json" || cfg.ServerAddr != ":42069" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Timeout != 15*time.Second || cfg.Backoff != 2*time.Second || cfg.MaxAttempts != 3 {
		t.Errorf("unexpected fetch defaults: timeout %v, backoff %v, attempts %d", cfg.Timeout, cfg.Backoff, cfg.MaxAttempts)
	}
	if cfg.PaceMin != 400*time.Millisecond || cfg.PaceMax != 600*time.Millisecond {
		t.Errorf("unexpected pacing defaults %v-%v", cfg.PaceMin, cfg.PaceMax)
	}
	if diff := cmp.Diff(verses.DefaultChapters, cfg.Chapters); diff != "" {
		t.Errorf("unexpected chapters (-want +got):\n%s", diff)
	}
	if cfg.Mail.Enabled() {
		t.Error("mail should be disabled without settings")
	}
	if err := cfg.ValidateHarvest(); err == nil {
		t.Error("expected ValidateHarvest to require HARVEST_BASE_URL")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HARVEST_BASE_URL", "https://api.example.org/bible")
	t.Setenv("HARVEST_BACKOFF", "500ms")
	t.Setenv("HARVEST_MAX_ATTEMPTS", "5")
	t.Setenv("HARVEST_RATE_LIMIT", "2.5")
	t.Setenv("HARVEST_CHAPTERS", "Psalms 23; 1 John 4")
	t.Setenv("MAILGUN_DOMAIN", "mg.example.org")
	t.Setenv("MAILGUN_API_KEY", "key")
	t.Setenv("MAILGUN_SENDER", "desk@example.org")
	t.Setenv("REPORT_RECIPIENT", "me@example.org")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if err := cfg.ValidateHarvest(); err != nil {
		t.Errorf("ValidateHarvest failed: %v", err)
	}
	if cfg.Backoff != 500*time.Millisecond || cfg.MaxAttempts != 5 || cfg.RateLimit != 2.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	want := []verses.Chapter{{Book: "Psalms", Number: 23}, {Book: "1 John", Number: 4}}
	if diff := cmp.Diff(want, cfg.Chapters); diff != "" {
		t.Errorf("unexpected chapters (-want +got):\n%s", diff)
	}
	if !cfg.Mail.Enabled() {
		t.Error("expected mail to be enabled")
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"HARVEST_TIMEOUT":      "soon",
		"HARVEST_BACKOFF":      "-1s",
		"HARVEST_MAX_ATTEMPTS": "0",
		"HARVEST_RATE_LIMIT":   "fast",
		"HARVEST_CHAPTERS":     "John",
		"HARVEST_PACE_MIN":     "2s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("expected %s=%q to be rejected", key, value)
			}
		})
	}
}

func TestValidateHarvest_RejectsNonHTTP(t *testing.T) {
	cfg := &Config{BaseURL: "ftp://example.org"}
	if err := cfg.ValidateHarvest(); err == nil {
		t.Error("expected a non-http base URL to be rejected")
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HARVEST_OUTPUT=from-dotenv.json\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Chdir(dir)
	// godotenv does not override variables that are already set, so make
	// sure the key is absent and restored afterwards.
	t.Setenv("HARVEST_OUTPUT", "")
	os.Unsetenv("HARVEST_OUTPUT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OutputPath != "from-dotenv.json" {
		t.Errorf("expected output path from .env, got %q", cfg.OutputPath)
	}
}
