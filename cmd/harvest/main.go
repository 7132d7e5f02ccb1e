package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"derrclan.com/study-desk/internal/cache_expunger"
	"derrclan.com/study-desk/internal/config"
	"derrclan.com/study-desk/internal/email"
	"derrclan.com/study-desk/internal/fetch"
	"derrclan.com/study-desk/internal/logging"
	"derrclan.com/study-desk/internal/store"
	"derrclan.com/study-desk/internal/verses"
)

func main() {
	if err := run(); err != nil {
		slog.Error("harvest failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.ValidateHarvest(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := fetch.New(cfg.Timeout,
		fetch.WithMaxAttempts(cfg.MaxAttempts),
		fetch.WithBackoff(cfg.Backoff),
		fetch.WithRateLimit(cfg.RateLimit),
	)

	h := verses.NewHarvester(cfg.BaseURL, client)
	h.Chapters = cfg.Chapters
	h.Pause = verses.JitterPause(cfg.PaceMin, cfg.PaceMax)

	if cfg.CacheDB != "" {
		cache, err := store.Open(ctx, cfg.CacheDB)
		if err != nil {
			return fmt.Errorf("failed to open chapter cache %s: %w", cfg.CacheDB, err)
		}
		defer cache.Close()

		if err := cache_expunger.Expunge(cache.DB(), cache_expunger.DefaultMaxAge, cache_expunger.DefaultMaxEntries); err != nil {
			slog.Warn("failed to expunge chapter cache", "error", err)
		}
		h.Cache = cache
	}

	slog.Info("starting harvest", "chapters", len(h.Chapters), "languages", len(h.Languages), "base_url", cfg.BaseURL)

	coll, summary, err := h.Run(ctx)
	if err != nil {
		// Interrupted runs still write what they gathered.
		slog.Warn("harvest interrupted", "error", err)
	}

	if err := coll.WriteFile(cfg.OutputPath); err != nil {
		return fmt.Errorf("failed to write verses to %s: %w", cfg.OutputPath, err)
	}
	slog.Info("harvest finished", "path", cfg.OutputPath, "references", len(coll),
		"fetches", summary.Fetches, "cached", summary.Cached, "failed", summary.Failed,
		"empty", summary.Empty, "verse_texts", summary.Verses)

	if cfg.Mail.Enabled() {
		if err := email.SendHarvestReport(context.Background(), cfg.Mail, cfg.OutputPath, summary.String()); err != nil {
			slog.Error("failed to send harvest report", "error", err)
		}
	}
	return nil
}
