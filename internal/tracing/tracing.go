package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	lambdadetector "go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/spacelift-io/scalemonitor/internal"
)

// Init installs the global tracer provider for the selected exporter. The
// caller owns shutting the provider down.
func Init(ctx context.Context, logger *slog.Logger, exporter internal.TracingExporter, isLambda bool) (*trace.TracerProvider, error) {
	opts := []trace.TracerProviderOption{}

	if isLambda {
		detector := lambdadetector.NewResourceDetector()
		lambdaResource, err := detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not detect lambda resource attributes: %w", err)
		}
		opts = append(opts, trace.WithResource(lambdaResource))
	}

	switch exporter {
	case internal.TracingExporterXRay:
		udpExporter, err := xrayudp.NewSpanExporter(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not initialize xray exporter: %w", err)
		}

		opts = append(opts, trace.WithSpanProcessor(trace.NewSimpleSpanProcessor(udpExporter)))
		opts = append(opts, trace.WithIDGenerator(xray.NewIDGenerator()))
		otel.SetTextMapPropagator(xray.Propagator{})
	case internal.TracingExporterStdout:
		stdoutExporter, err := stdouttrace.New()
		if err != nil {
			return nil, fmt.Errorf("could not initialize stdout exporter: %w", err)
		}

		opts = append(opts, trace.WithBatcher(stdoutExporter))
	case internal.TracingExporterNone, "":
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", exporter)
	}

	tp := trace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	logger.Debug("tracer provider initialized", "exporter", string(exporter))

	return tp, nil
}
