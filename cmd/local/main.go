package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	cmdinternal "github.com/spacelift-io/scalemonitor/cmd/internal"
	"github.com/spacelift-io/scalemonitor/internal"
	"github.com/spacelift-io/scalemonitor/internal/tracing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	// A missing .env file is fine, the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error("could not load .env file", "error", err)
		os.Exit(1)
	}

	var cfg internal.RuntimeConfig
	if err := cfg.Parse(); err != nil {
		logger.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, logger, cfg.TracingExporter, false)
	if err != nil {
		logger.Error("could not initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func(ctx context.Context) {
		err := tp.Shutdown(ctx)
		if err != nil {
			logger.Error("error shutting down tracer provider", "error", err)
		}
	}(ctx)

	t := otel.Tracer("local")
	ctx, span := t.Start(ctx, "scalemonitor")
	defer span.End()

	vote, err := cmdinternal.Handle(ctx, logger, &cfg)
	if err != nil {
		logger.With("msg", err.Error()).Error("could not handle request")
		span.RecordError(err)
		span.SetStatus(codes.Error, "")
		os.Exit(1)
	}

	logger.Info("scale decision", "vote", vote, "worker_count", cfg.WorkerCount)
}
