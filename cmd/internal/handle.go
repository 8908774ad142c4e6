package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/spacelift-io/scalemonitor/internal"
	"github.com/spacelift-io/scalemonitor/internal/monitors"
)

const tracerName = "github.com/spacelift-io/scalemonitor/internal"

// Host bundles the scale monitoring components of one host.
type Host struct {
	Registry *internal.MonitorManager
	Store    *internal.MetricsStore
	Service  *internal.ScaleMonitorService
	Manager  *internal.ScaleManager

	blob internal.BlobStore
}

// NewHost wires up the monitors, the metrics store and the primary signal
// described by cfg.
func NewHost(ctx context.Context, logger *slog.Logger, cfg *internal.RuntimeConfig) (*Host, error) {
	logger = logger.With("host_id", cfg.HostID)

	registry := internal.NewMonitorManager()

	if cfg.MonitorsFile != "" {
		monitorsConfig, err := monitors.LoadConfig(cfg.MonitorsFile)
		if err != nil {
			return nil, fmt.Errorf("could not load monitors: %w", err)
		}

		for _, monitor := range monitors.NewMonitors(monitorsConfig) {
			registry.Register(monitor)
		}
	}

	logger.Info("monitors registered", "monitors", len(registry.GetMonitors()))

	blob, err := internal.NewBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create metrics blob store: %w", err)
	}

	primary, err := internal.NewPrimaryProvider(ctx, cfg)
	if err != nil {
		closeBlob(logger, blob)
		return nil, fmt.Errorf("could not create primary host state provider: %w", err)
	}

	tracer := otel.Tracer(tracerName)
	store := internal.NewMetricsStore(blob, tracer)

	return &Host{
		Registry: registry,
		Store:    store,
		Service:  internal.NewScaleMonitorService(registry, store, primary, cfg.ServiceConfig(), logger, tracer),
		Manager:  internal.NewScaleManager(registry, store, logger, tracer),
		blob:     blob,
	}, nil
}

// Close releases the resources held by the metrics blob store.
func (h *Host) Close(logger *slog.Logger) {
	closeBlob(logger, h.blob)
}

func closeBlob(logger *slog.Logger, blob internal.BlobStore) {
	closer, ok := blob.(io.Closer)
	if !ok {
		return
	}

	if err := closer.Close(); err != nil {
		logger.Warn("could not close metrics blob store", "error", err)
	}
}

// Handle runs one sampling cycle followed by one scale decision for the
// configured worker count.
func Handle(ctx context.Context, logger *slog.Logger, cfg *internal.RuntimeConfig) (internal.ScaleVote, error) {
	host, err := NewHost(ctx, logger, cfg)
	if err != nil {
		return internal.ScaleVoteNone, err
	}
	defer host.Close(logger)

	return host.Decide(ctx, logger, cfg)
}

// Decide samples the monitors once, when scale monitoring is enabled, and
// votes on the stored history. A failed sample only costs this cycle's data
// point; only a fatal sampling error prevents the vote.
func (h *Host) Decide(ctx context.Context, logger *slog.Logger, cfg *internal.RuntimeConfig) (internal.ScaleVote, error) {
	if cfg.ScaleMonitoringEnabled {
		if err := h.Service.Tick(ctx); err != nil {
			if internal.IsFatal(err) {
				return internal.ScaleVoteNone, fmt.Errorf("could not sample metrics: %w", err)
			}

			logger.Error("failed to collect/persist metrics sample", "error", err)
		}
	}

	vote, err := h.Manager.GetScaleStatus(ctx, internal.ScaleStatusContext{WorkerCount: cfg.WorkerCount})
	if err != nil {
		return internal.ScaleVoteNone, fmt.Errorf("could not compute scale status: %w", err)
	}

	return vote, nil
}
