package internal_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/scalemonitor/internal"
)

type counterSample struct {
	Count int `json:"count"`
}

// counterMonitor hands out a fixed sequence of samples and votes whatever
// the vote func decides.
type counterMonitor struct {
	descriptor internal.MonitorDescriptor

	mu      sync.Mutex
	samples []int
	taken   int
	err     error

	vote    func(workerCount int, history []counterSample) internal.ScaleVote
	history [][]counterSample
}

func newCounterMonitor(functionID string, samples ...int) *counterMonitor {
	return &counterMonitor{
		descriptor: internal.MonitorDescriptor{FunctionID: functionID, TriggerType: "queue", ResourceID: "orders"},
		samples:    samples,
	}
}

func (m *counterMonitor) Descriptor() internal.MonitorDescriptor {
	return m.descriptor
}

func (m *counterMonitor) CollectSample(context.Context) (counterSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return counterSample{}, m.err
	}

	sample := counterSample{Count: m.samples[m.taken%len(m.samples)]}
	m.taken++

	return sample, nil
}

func (m *counterMonitor) Vote(_ context.Context, workerCount int, history []counterSample) (internal.ScaleVote, error) {
	m.mu.Lock()
	m.history = append(m.history, history)
	m.mu.Unlock()

	if m.vote == nil {
		return internal.ScaleVoteNone, nil
	}
	return m.vote(workerCount, history), nil
}

func (m *counterMonitor) collected() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.taken
}

func fixedVote(vote internal.ScaleVote) func(int, []counterSample) internal.ScaleVote {
	return func(int, []counterSample) internal.ScaleVote { return vote }
}

func newTestTracer() oteltrace.Tracer {
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(trace.NewSimpleSpanProcessor(tracetest.NewNoopExporter())))
	return tp.Tracer("unittest")
}

func newTestLogger() *slog.Logger {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil))
}

func counts(t interface{ Helper() }, metrics []internal.Sample) []int {
	t.Helper()

	out := make([]int, 0, len(metrics))
	for _, sample := range metrics {
		out = append(out, sample.(*counterSample).Count)
	}
	return out
}
