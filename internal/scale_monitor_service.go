package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSamplingInterval     = 10 * time.Second
	DefaultMaxConcurrentSamples = 8
)

// FatalError marks a failure the sampling loop must not survive. Any other
// error only costs the current tick.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err, or anything it wraps, is a *FatalError.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// MetricsWriter is the write side of the metrics store.
type MetricsWriter interface {
	Write(ctx context.Context, samples []MonitorSample) error
}

// ScaleMonitorServiceConfig holds the settings of the sampling loop.
type ScaleMonitorServiceConfig struct {
	Enabled              bool
	Interval             time.Duration
	MaxConcurrentSamples int
}

// ScaleMonitorService periodically takes a metrics sample from every monitor
// and persists the batch. Every instance runs the loop but only the primary
// one does any work, so there is a single writer across the fleet.
type ScaleMonitorService struct {
	registry MonitorRegistry
	store    MetricsWriter
	primary  PrimaryHostStateProvider
	config   ScaleMonitorServiceConfig
	logger   *slog.Logger
	tracer   trace.Tracer

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func NewScaleMonitorService(
	registry MonitorRegistry,
	store MetricsWriter,
	primary PrimaryHostStateProvider,
	config ScaleMonitorServiceConfig,
	logger *slog.Logger,
	tracer trace.Tracer,
) *ScaleMonitorService {
	if config.Interval <= 0 {
		config.Interval = DefaultSamplingInterval
	}

	if config.MaxConcurrentSamples <= 0 {
		config.MaxConcurrentSamples = DefaultMaxConcurrentSamples
	}

	return &ScaleMonitorService{
		registry: registry,
		store:    store,
		primary:  primary,
		config:   config,
		logger:   logger,
		tracer:   tracer,
	}
}

// Start schedules the first tick one interval from now. It does nothing when
// runtime scale monitoring is disabled.
func (s *ScaleMonitorService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("runtime scale monitoring is disabled, not sampling metrics")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("scale monitor service already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.err = nil

	go s.run(loopCtx, s.done)

	s.logger.Info("scale monitor service started", "interval", s.config.Interval)

	return nil
}

// Stop prevents any further ticks from being scheduled. A tick already in
// flight is allowed to finish; Stop waits for it until ctx expires.
func (s *ScaleMonitorService) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
		s.logger.Info("scale monitor service stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("could not wait for in-flight metrics sample: %w", ctx.Err())
	}
}

// Done is closed once the sampling loop has exited. It is nil if the service
// was never started.
func (s *ScaleMonitorService) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Err returns the fatal error that terminated the loop, if any.
func (s *ScaleMonitorService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *ScaleMonitorService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// The tick must be able to finish after Stop, so it does not inherit
		// the loop's cancellation.
		err := s.Tick(context.WithoutCancel(ctx))

		if IsFatal(err) {
			s.logger.Error("metrics sampling failed fatally, stopping", "error", err)

			s.mu.Lock()
			s.err = err
			s.mu.Unlock()

			return
		}

		if err != nil {
			s.logger.Error("failed to collect/persist metrics sample", "error", err)
		}

		if ctx.Err() != nil {
			return
		}

		timer.Reset(s.config.Interval)
	}
}

// Tick runs a single sampling cycle: if this instance is primary, collect a
// sample from every monitor and persist the whole batch in one write. A panic
// in a monitor fails the tick like any other collection error.
func (s *ScaleMonitorService) Tick(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "scale.monitor.tick")
	defer span.End()

	isPrimary, err := s.primary.IsPrimary(ctx)
	if err != nil {
		err = fmt.Errorf("could not determine primary host state: %w", err)
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Bool("primary", isPrimary))

	if !isPrimary {
		s.logger.Debug("not the primary host, skipping metrics sample")
		return nil
	}

	monitors := s.registry.GetMonitors()
	span.SetAttributes(attribute.Int("monitors", len(monitors)))

	samples, err := s.collectSamples(ctx, monitors)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.store.Write(ctx, samples); err != nil {
		err = fmt.Errorf("could not persist metrics samples: %w", err)
		span.RecordError(err)
		return err
	}

	return nil
}

// collectSamples samples all monitors concurrently. The batch keeps registry
// order, and any single failure fails the whole batch.
func (s *ScaleMonitorService) collectSamples(ctx context.Context, monitors []Monitor) ([]MonitorSample, error) {
	samples := make([]MonitorSample, len(monitors))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.MaxConcurrentSamples)

	for i, monitor := range monitors {
		group.Go(func() (err error) {
			descriptor := monitor.Descriptor()

			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("monitor for function %s panicked while collecting metrics sample: %v", descriptor.FunctionID, r)
				}
			}()

			sample, err := monitor.CollectSample(groupCtx)
			if err != nil {
				return fmt.Errorf("could not collect metrics sample for function %s: %w", descriptor.FunctionID, err)
			}

			s.logger.Info(
				"metrics sample collected",
				"function_id", descriptor.FunctionID,
				"trigger_type", descriptor.TriggerType,
				"sample", sample,
			)

			samples[i] = MonitorSample{Monitor: monitor, Sample: sample}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return samples, nil
}
