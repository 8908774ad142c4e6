package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MetricsReader is the read side of the metrics store.
type MetricsReader interface {
	Read(ctx context.Context, monitors []Monitor) ([]MonitorMetrics, error)
}

// ScaleManager turns the stored metrics of all monitors into a single scale
// vote for the host. It holds no state between calls.
type ScaleManager struct {
	registry MonitorRegistry
	store    MetricsReader
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewScaleManager(registry MonitorRegistry, store MetricsReader, logger *slog.Logger, tracer trace.Tracer) *ScaleManager {
	return &ScaleManager{registry: registry, store: store, logger: logger, tracer: tracer}
}

// GetScaleStatus asks every monitor for its vote given its own history and
// the current worker count, and aggregates the votes.
func (m *ScaleManager) GetScaleStatus(ctx context.Context, status ScaleStatusContext) (vote ScaleVote, err error) {
	ctx, span := m.tracer.Start(ctx, "scale.status")
	defer span.End()

	span.SetAttributes(attribute.Int("worker_count", status.WorkerCount))

	if status.WorkerCount < 0 {
		err = errors.New("worker count cannot be negative")
		span.RecordError(err)
		return ScaleVoteNone, err
	}

	logger := m.logger.With("worker_count", status.WorkerCount)

	monitors := m.registry.GetMonitors()

	monitorMetrics, err := m.store.Read(ctx, monitors)
	if err != nil {
		err = fmt.Errorf("could not read metrics: %w", err)
		span.RecordError(err)
		return ScaleVoteNone, err
	}

	logger.Info("computing scale status", "triggers", len(monitorMetrics))

	votes := make([]ScaleVote, 0, len(monitorMetrics))

	for _, entry := range monitorMetrics {
		descriptor := entry.Monitor.Descriptor()

		monitorVote, err := entry.Monitor.Vote(ctx, ScaleStatusContext{
			WorkerCount: status.WorkerCount,
			Metrics:     entry.Metrics,
		})
		if err != nil {
			err = fmt.Errorf("could not get scale vote for function %s: %w", descriptor.FunctionID, err)
			span.RecordError(err)
			return ScaleVoteNone, err
		}

		logger.Info("function voted", "function_id", descriptor.FunctionID, "vote", monitorVote)

		votes = append(votes, monitorVote)
	}

	vote = AggregateVotes(status.WorkerCount, votes)

	span.SetAttributes(attribute.String("vote", vote.String()))
	logger.Info("scale status computed", "vote", vote)

	return vote, nil
}

// AggregateVotes reduces per-monitor votes to one. A single scale-out vote
// wins; scaling in needs every monitor to agree and at least one worker to
// remove. With no votes at all, any remaining workers are drained.
func AggregateVotes(workerCount int, votes []ScaleVote) ScaleVote {
	if len(votes) == 0 {
		if workerCount > 0 {
			return ScaleVoteScaleIn
		}
		return ScaleVoteNone
	}

	allScaleIn := true

	for _, vote := range votes {
		if vote == ScaleVoteScaleOut {
			return ScaleVoteScaleOut
		}

		if vote != ScaleVoteScaleIn {
			allScaleIn = false
		}
	}

	if workerCount > 0 && allScaleIn {
		return ScaleVoteScaleIn
	}

	return ScaleVoteNone
}
