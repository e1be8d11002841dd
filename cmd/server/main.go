// Package main is the entry point for the company-enricher HTTP server.
// In Go, the `main` package with a `main()` function is what gets executed.
// Go compiles to a single static binary, so no runtime is needed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/app"
	"github.com/fleveque/company-enricher/internal/config"
	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/server"
)

func main() {
	// os.Exit ensures the process exits with a non-zero code on failure.
	// We call run() separately so deferred cleanup functions execute properly
	// (deferred functions don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("ENRICHER_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up structured logging with zap.
	// zap is a high-performance structured logger: it outputs JSON in production
	// and human-readable format in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// defer runs when the enclosing function returns, like a finally block.
	// Sync flushes buffered log entries. We intentionally ignore the error here
	// because Sync commonly fails on stdout/stderr (not a real problem).
	defer func() { _ = logger.Sync() }()

	// Validates config, then builds clients, repositories and services.
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("no API keys configured; enrichment endpoints will reject every request")
	}

	// Rows from API calls are stored against one run per process.
	apiRun, err := a.Recorder.StartRun(context.Background(), model.RunAPI, "", 0)
	if err != nil {
		return fmt.Errorf("starting api run: %w", err)
	}

	srv := server.New(cfg, server.Deps{
		Companies:     a.RevenueService,
		Contacts:      a.ContactService,
		Recorder:      a.Recorder,
		APIRunID:      apiRun.ID,
		Runs:          a.Runs,
		CompanyRows:   a.Companies,
		ContactRows:   a.Contacts,
		ModelCallRepo: a.Calls,
		Provider:      a.Model.ProviderName(),
		Model:         a.Model.ModelName(),
	}, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	// Channels are Go's primary concurrency primitive: goroutines communicate
	// through channels instead of sharing memory.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine (lightweight thread managed by Go runtime).
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Block until we receive a signal or the server errors out.
	// select is like a switch for channels: it waits until one is ready.
	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// In-flight enrichments can take a while; give them 30 seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(ctx)

	// Progress is bumped per stored row, so the run already knows its count.
	completed := 0
	if run, err := a.Runs.Get(context.Background(), apiRun.ID); err != nil {
		logger.Warn("loading api run", zap.Error(err))
	} else {
		completed = run.Completed
	}
	a.Recorder.FinishRun(context.Background(), apiRun.ID, completed, false)

	return shutdownErr
}
