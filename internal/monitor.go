package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Sample is a single point-in-time measurement produced by a monitor. Its
// shape is entirely up to the monitor; the metrics store only serializes it.
type Sample any

// MonitorDescriptor identifies a monitor by the function, trigger and
// resource it watches.
type MonitorDescriptor struct {
	FunctionID  string
	TriggerType string
	ResourceID  string
}

// key is the stable identity under which the monitor's history is persisted.
func (d MonitorDescriptor) key() string {
	return strings.ToLower(fmt.Sprintf("%s-%s-%s", d.FunctionID, d.TriggerType, d.ResourceID))
}

// Monitor is implemented by every trigger that takes part in scale decisions.
//
//go:generate mockery --output ./ --name Monitor --filename mock_monitor_test.go --outpkg internal_test
type Monitor interface {
	Descriptor() MonitorDescriptor

	// NewSample returns a pointer to a zero value of the sample type the
	// monitor produces. Persisted samples are decoded into it.
	NewSample() Sample

	CollectSample(ctx context.Context) (Sample, error)
	Vote(ctx context.Context, status ScaleStatusContext) (ScaleVote, error)
}

// MonitorRegistry provides the set of currently active monitors. Membership
// may change between calls.
type MonitorRegistry interface {
	GetMonitors() []Monitor
}

// MonitorManager is an in-memory MonitorRegistry. It is safe for concurrent
// use, so monitors can be registered and removed while the scheduler runs.
type MonitorManager struct {
	mu       sync.RWMutex
	monitors []Monitor
}

func NewMonitorManager(monitors ...Monitor) *MonitorManager {
	m := &MonitorManager{}
	for _, monitor := range monitors {
		m.Register(monitor)
	}
	return m
}

// Register adds a monitor, replacing any monitor with the same identity.
func (m *MonitorManager) Register(monitor Monitor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := monitor.Descriptor().key()
	for i, existing := range m.monitors {
		if existing.Descriptor().key() == key {
			m.monitors[i] = monitor
			return
		}
	}

	m.monitors = append(m.monitors, monitor)
}

// Unregister removes the monitor with the given identity, if registered.
func (m *MonitorManager) Unregister(descriptor MonitorDescriptor) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := descriptor.key()
	for i, existing := range m.monitors {
		if existing.Descriptor().key() == key {
			m.monitors = append(m.monitors[:i], m.monitors[i+1:]...)
			return true
		}
	}

	return false
}

// GetMonitors returns a snapshot of the registered monitors in registration
// order.
func (m *MonitorManager) GetMonitors() []Monitor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Monitor, len(m.monitors))
	copy(out, m.monitors)
	return out
}

// TriggerMonitor is the typed counterpart of Monitor. Implementations work
// with their own sample type and are turned into a Monitor by AdaptMonitor.
type TriggerMonitor[T any] interface {
	Descriptor() MonitorDescriptor
	CollectSample(ctx context.Context) (T, error)
	Vote(ctx context.Context, workerCount int, history []T) (ScaleVote, error)
}

// AdaptMonitor exposes a TriggerMonitor as a Monitor. Samples travel through
// the core as *T.
func AdaptMonitor[T any](monitor TriggerMonitor[T]) Monitor {
	return &typedMonitor[T]{inner: monitor}
}

type typedMonitor[T any] struct {
	inner TriggerMonitor[T]
}

func (m *typedMonitor[T]) Descriptor() MonitorDescriptor {
	return m.inner.Descriptor()
}

func (m *typedMonitor[T]) NewSample() Sample {
	return new(T)
}

func (m *typedMonitor[T]) CollectSample(ctx context.Context) (Sample, error) {
	sample, err := m.inner.CollectSample(ctx)
	if err != nil {
		return nil, err
	}

	return &sample, nil
}

func (m *typedMonitor[T]) Vote(ctx context.Context, status ScaleStatusContext) (ScaleVote, error) {
	history := make([]T, 0, len(status.Metrics))

	for _, sample := range status.Metrics {
		switch typed := sample.(type) {
		case *T:
			history = append(history, *typed)
		case T:
			history = append(history, typed)
		default:
			return ScaleVoteNone, fmt.Errorf("unexpected sample type %T for monitor %s", sample, m.Descriptor().key())
		}
	}

	return m.inner.Vote(ctx, status.WorkerCount, history)
}
