package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdinternal "github.com/spacelift-io/scalemonitor/cmd/internal"
	"github.com/spacelift-io/scalemonitor/internal"
	"github.com/spacelift-io/scalemonitor/internal/statusapi"
	"github.com/spacelift-io/scalemonitor/internal/tracing"
)

// Long-running entry point: samples metrics in the background and serves the
// scale vote over HTTP until a shutdown signal arrives.

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Parse config at startup - fail fast on misconfiguration
	var cfg internal.RuntimeConfig
	if err := cfg.Parse(); err != nil {
		logger.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Init(ctx, logger, cfg.TracingExporter, false)
	if err != nil {
		logger.Error("could not initialize tracing", "error", err)
		os.Exit(1)
	}

	host, err := cmdinternal.NewHost(ctx, logger, &cfg)
	if err != nil {
		logger.Error("could not set up scale monitoring", "error", err)
		os.Exit(1)
	}

	if err := host.Service.Start(ctx); err != nil {
		logger.Error("could not start scale monitor service", "error", err)
		os.Exit(1)
	}

	server := statusapi.NewServer(cfg.StatusAddress, host.Manager, logger)

	serverErr, err := server.Start()
	if err != nil {
		logger.Error("could not start status API", "error", err)
		os.Exit(1)
	}

	exitCode := 0

	// Wait for shutdown signal, server error or a fatal sampling failure
	select {
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		exitCode = 1
	case <-host.Service.Done():
		logger.Error("scale monitor service terminated", "error", host.Service.Err())
		exitCode = 1
	case <-ctx.Done():
		logger.Info("Shutdown signal received, starting graceful shutdown")
		stop() // Stop receiving more signals
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("forced status API shutdown due to timeout", "error", err)
		exitCode = 1
	}

	if err := host.Service.Stop(shutdownCtx); err != nil {
		logger.Error("forced scale monitor shutdown due to timeout", "error", err)
		exitCode = 1
	}

	host.Close(logger)

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down tracer provider", "error", err)
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}

	logger.Info("Server stopped gracefully")
}
