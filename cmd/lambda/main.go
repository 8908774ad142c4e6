package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"

	cmdinternal "github.com/spacelift-io/scalemonitor/cmd/internal"
	"github.com/spacelift-io/scalemonitor/internal"
	"github.com/spacelift-io/scalemonitor/internal/tracing"
)

// Event lets the invoker override the worker count for one decision.
type Event struct {
	WorkerCount *int `json:"workerCount,omitempty"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	var cfg internal.RuntimeConfig
	if err := cfg.Parse(); err != nil {
		logger.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, logger, cfg.TracingExporter, true)
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

	handler := func(ctx context.Context, event Event) (internal.ScaleStatusResult, error) {
		logger := logger
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			logger = logger.With("aws_request_id", lc.AwsRequestID)
		}

		invocationCfg := cfg
		if event.WorkerCount != nil {
			invocationCfg.WorkerCount = *event.WorkerCount
		}

		vote, err := cmdinternal.Handle(ctx, logger, &invocationCfg)
		if err != nil {
			logger.Error("could not handle invocation", "error", err)
			return internal.ScaleStatusResult{}, fmt.Errorf("could not handle invocation: %w", err)
		}

		return internal.ScaleStatusResult{Vote: vote}, nil
	}

	lambda.Start(otellambda.InstrumentHandler(handler, otellambda.WithTracerProvider(tp), otellambda.WithFlusher(tp)))
}
