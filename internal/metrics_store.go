package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxMetricsCount is the number of samples kept per monitor.
const MaxMetricsCount = 5

// ErrUnknownSampleType is returned when a monitor does not declare the type of
// the samples it produces, so its history cannot be decoded.
var ErrUnknownSampleType = errors.New("monitor does not declare a sample type")

// BlobStore is a single named document in some durable object store.
//
//go:generate mockery --output ./ --name BlobStore --filename mock_blob_store_test.go --outpkg internal_test
type BlobStore interface {
	Exists(ctx context.Context) (bool, error)
	Download(ctx context.Context) ([]byte, error)
	Upload(ctx context.Context, content []byte) error
}

// MonitorSample pairs a freshly collected sample with its monitor.
type MonitorSample struct {
	Monitor Monitor
	Sample  Sample
}

// MonitorMetrics pairs a monitor with its stored history, oldest first.
type MonitorMetrics struct {
	Monitor Monitor
	Metrics []Sample
}

// metricsDocument is the persisted state: raw sample histories keyed by
// monitor identity. Samples stay raw so writes never need to understand them.
type metricsDocument map[string][]json.RawMessage

// MetricsStore keeps a bounded history of samples per monitor in a single
// blob. It does no locking of its own: there must only ever be one writer.
type MetricsStore struct {
	blob   BlobStore
	tracer trace.Tracer
}

func NewMetricsStore(blob BlobStore, tracer trace.Tracer) *MetricsStore {
	return &MetricsStore{blob: blob, tracer: tracer}
}

// Read returns the stored history of each of the given monitors, in the
// order they were passed in. Monitors without history get an empty one.
func (s *MetricsStore) Read(ctx context.Context, monitors []Monitor) (out []MonitorMetrics, err error) {
	ctx, span := s.tracer.Start(ctx, "metrics.read")
	defer span.End()

	span.SetAttributes(attribute.Int("monitors", len(monitors)))

	document, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out = make([]MonitorMetrics, 0, len(monitors))

	for _, monitor := range monitors {
		metrics, err := decodeHistory(monitor, document[monitor.Descriptor().key()])
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		out = append(out, MonitorMetrics{Monitor: monitor, Metrics: metrics})
	}

	return out, nil
}

// Write appends each sample to its monitor's history and replaces the stored
// document with one holding only the monitors in this batch. History of
// monitors left out of the batch is dropped.
func (s *MetricsStore) Write(ctx context.Context, samples []MonitorSample) (err error) {
	ctx, span := s.tracer.Start(ctx, "metrics.write")
	defer span.End()

	span.SetAttributes(attribute.Int("samples", len(samples)))

	current, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	next := make(metricsDocument, len(samples))

	for _, entry := range samples {
		key := entry.Monitor.Descriptor().key()

		raw, err := json.Marshal(entry.Sample)
		if err != nil {
			err = fmt.Errorf("could not encode metrics sample for monitor %s: %w", key, err)
			span.RecordError(err)
			return err
		}

		history, ok := next[key]
		if !ok {
			history = current[key]
		}

		next[key] = appendBounded(history, raw)
	}

	content, err := json.Marshal(next)
	if err != nil {
		err = fmt.Errorf("could not encode metrics document: %w", err)
		span.RecordError(err)
		return err
	}

	if err = s.blob.Upload(ctx, content); err != nil {
		err = fmt.Errorf("could not upload metrics document: %w", err)
		span.RecordError(err)
		return err
	}

	return nil
}

func (s *MetricsStore) load(ctx context.Context) (metricsDocument, error) {
	exists, err := s.blob.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not check for metrics document: %w", err)
	}

	if !exists {
		return metricsDocument{}, nil
	}

	content, err := s.blob.Download(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not download metrics document: %w", err)
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return metricsDocument{}, nil
	}

	var document metricsDocument
	if err := json.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf("could not parse metrics document: %w", err)
	}

	if document == nil {
		document = metricsDocument{}
	}

	return document, nil
}

// appendBounded returns a new history with sample appended, keeping at most
// MaxMetricsCount of the newest entries.
func appendBounded(history []json.RawMessage, sample json.RawMessage) []json.RawMessage {
	if overflow := len(history) + 1 - MaxMetricsCount; overflow > 0 {
		history = history[overflow:]
	}

	out := make([]json.RawMessage, 0, len(history)+1)
	out = append(out, history...)
	return append(out, sample)
}

func decodeHistory(monitor Monitor, raw []json.RawMessage) ([]Sample, error) {
	key := monitor.Descriptor().key()

	if monitor.NewSample() == nil {
		return nil, fmt.Errorf("could not decode metrics for monitor %s: %w", key, ErrUnknownSampleType)
	}

	out := make([]Sample, 0, len(raw))

	for _, record := range raw {
		sample := monitor.NewSample()

		// Fields the sample type no longer has are ignored, so renaming or
		// dropping a field does not lock out the history already stored.
		if err := json.Unmarshal(record, sample); err != nil {
			return nil, fmt.Errorf("could not decode metrics sample for monitor %s: %w", key, err)
		}

		out = append(out, sample)
	}

	return out, nil
}
