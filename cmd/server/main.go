package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"derrclan.com/study-desk/internal/config"
	"derrclan.com/study-desk/internal/logging"
	"derrclan.com/study-desk/internal/server"
	"derrclan.com/study-desk/internal/verses"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	coll, err := verses.ReadFile(cfg.VersesFile)
	if err != nil {
		slog.Error("failed to load verses", "path", cfg.VersesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("loaded verses", "path", cfg.VersesFile, "references", len(coll))

	s, err := server.New(coll)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	srv := http.Server{
		Addr:    cfg.ServerAddr,
		Handler: s.Muxer(),
	}

	ctx := context.Background()

	idleConns := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("error shutting down http server", "error", err)
		}
		close(idleConns)
	}()

	slog.Info("listening", "addr", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("http server died", "error", err)
		os.Exit(1)
	}
	<-idleConns
}
