package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/wikiqa/internal/api"
	"github.com/dgallion1/wikiqa/internal/config"
	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/extract"
	"github.com/dgallion1/wikiqa/internal/pipeline"
	"github.com/dgallion1/wikiqa/internal/wiki"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(log); err != nil {
		log.Error("wikiqa server", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	if err := config.LoadDotenv(os.Getenv("WIKIQA_ENV_FILE")); err != nil {
		return err
	}
	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	completer, err := pipeline.NewCompleter(cfg)
	if err != nil {
		return fmt.Errorf("completion client: %w", err)
	}
	if c, ok := completer.(*extract.ClaudeClient); ok {
		defer c.Close()
	}

	wikiClient := wiki.NewClient(
		wiki.WithUserAgent(cfg.WikiUserAgent),
		wiki.WithTimeout(cfg.WikiTimeout),
		wiki.WithCache(cfg.FetchCacheSize, cfg.FetchCacheTTL),
		wiki.WithLogger(log.With("component", "wiki")),
	)
	fetcher := pipeline.NewFetcher(wikiClient, cfg.MaxChunkSize, cfg.PDFFallbackPdftotext)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := pipeline.NewGenerator(completer, extract.NewLLMStats(cfg.StatsWindow), log, cfg.RetryBackoff, cfg.RetryAttempts)
	sessions := dataset.NewSessionStore(cfg.SessionTTL)
	orch := pipeline.NewOrchestrator(cfg, gen, sessions, log)
	// Workers are not tied to ctx: they run until Stop, deferred past Shutdown.
	orch.Start(context.Background())
	defer orch.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, sessions, fetcher, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting wikiqa",
			"port", cfg.Port,
			"backend", cfg.LLMBackend,
			"model", completer.Model(),
			"workers", cfg.WorkerCount,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
