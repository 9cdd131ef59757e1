package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rfinnegan/mdserve/internal/api"
	"github.com/rfinnegan/mdserve/internal/config"
	"github.com/rfinnegan/mdserve/internal/document"
	"github.com/rfinnegan/mdserve/internal/editor"
	"github.com/rfinnegan/mdserve/internal/fetch"
	"github.com/rfinnegan/mdserve/internal/render"
	"github.com/rfinnegan/mdserve/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileStore, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Error("open data dir", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	st := store.NewStateStore(fileStore, cfg.RecentLimit, cfg.RecentTruncate)

	renderer := render.New(cfg.PublicURL)
	fetcher := fetch.New(cfg.FetchTimeout, cfg.FetchProxies, log)

	ed := editor.New(st, log, cfg.AutosaveDebounce, cfg.AutosaveInterval, cfg.HistoryDepth)
	ed.Load()
	go ed.Run(ctx)

	srv := api.NewServer(document.NewState(), renderer, fetcher, ed, st, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		ed.Flush()
	}()

	log.Info("starting mdserve", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
