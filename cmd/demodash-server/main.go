// Package main provides the HTTP server for demodash.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akarsten/demodash-go/internal/config"
	"github.com/akarsten/demodash-go/internal/instructions"
	"github.com/akarsten/demodash-go/internal/llm"
	"github.com/akarsten/demodash-go/internal/metrics"
	"github.com/akarsten/demodash-go/internal/server"
	"github.com/akarsten/demodash-go/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() {
		if err := closeLog(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()

	slog.Info("starting demodash-server", "port", cfg.Port, "base_dir", cfg.BaseDir, "provider", cfg.Provider)

	st, err := store.New(cfg.BaseDir, cfg.CacheSize, logger)
	if err != nil {
		slog.Error("failed to open demo store", "error", err)
		os.Exit(1)
	}

	// The watcher keeps the parsed-config cache coherent with out-of-band
	// filesystem edits. The server works without it.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := st.Watch(watchCtx); err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		}
	}()

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		// Dashboard CRUD still works without a provider; only chat is off.
		slog.Warn("chat streaming disabled", "error", err)
		llmClient = nil
	}

	srv := server.New(st, instructions.New(cfg.BaseDir), llmClient, metrics.NewCollector(), logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 300 * time.Second, // Long for streamed LLM responses
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("listening", "url", "http://localhost:"+cfg.Port+"/")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
