package internal_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spacelift-io/scalemonitor/internal"
)

type primaryFunc func(ctx context.Context) (bool, error)

func (f primaryFunc) IsPrimary(ctx context.Context) (bool, error) {
	return f(ctx)
}

type recordingWriter struct {
	mu      sync.Mutex
	batches [][]internal.MonitorSample
	err     error
}

func (w *recordingWriter) Write(_ context.Context, samples []internal.MonitorSample) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.batches = append(w.batches, samples)
	return w.err
}

func (w *recordingWriter) writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.batches)
}

func setupScaleMonitorService(
	primary internal.PrimaryHostStateProvider,
	writer internal.MetricsWriter,
	monitors ...internal.Monitor,
) *internal.ScaleMonitorService {
	return internal.NewScaleMonitorService(
		internal.NewMonitorManager(monitors...),
		writer,
		primary,
		internal.ScaleMonitorServiceConfig{Enabled: true, Interval: 5 * time.Millisecond},
		newTestLogger(),
		newTestTracer(),
	)
}

func TestScaleMonitorService_Tick_Primary_WritesOneBatchInRegistryOrder(t *testing.T) {
	writer := &recordingWriter{}
	a := internal.AdaptMonitor[counterSample](newCounterMonitor("a", 1))
	b := internal.AdaptMonitor[counterSample](newCounterMonitor("b", 2))
	c := internal.AdaptMonitor[counterSample](newCounterMonitor("c", 3))

	service := setupScaleMonitorService(internal.StaticPrimary(true), writer, a, b, c)

	require.NoError(t, service.Tick(t.Context()))

	require.Len(t, writer.batches, 1)
	batch := writer.batches[0]
	require.Len(t, batch, 3)

	for i, expected := range []internal.Monitor{a, b, c} {
		assert.Same(t, expected, batch[i].Monitor)
		assert.Equal(t, &counterSample{Count: i + 1}, batch[i].Sample)
	}
}

func TestScaleMonitorService_Tick_Persists(t *testing.T) {
	store, _ := setupMetricsStore()
	monitor := internal.AdaptMonitor[counterSample](newCounterMonitor("a", 10, 20))

	service := setupScaleMonitorService(internal.StaticPrimary(true), store, monitor)

	require.NoError(t, service.Tick(t.Context()))
	require.NoError(t, service.Tick(t.Context()))

	out, err := store.Read(t.Context(), []internal.Monitor{monitor})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, counts(t, out[0].Metrics))
}

func TestScaleMonitorService_Tick_NotPrimary_DoesNothing(t *testing.T) {
	writer := &recordingWriter{}
	monitor := newCounterMonitor("a", 1)

	service := setupScaleMonitorService(internal.StaticPrimary(false), writer, internal.AdaptMonitor[counterSample](monitor))

	require.NoError(t, service.Tick(t.Context()))

	assert.Zero(t, monitor.collected())
	assert.Zero(t, writer.writes())
}

func TestScaleMonitorService_Tick_PrimaryCheckFails_ReturnsError(t *testing.T) {
	writer := &recordingWriter{}
	primary := primaryFunc(func(context.Context) (bool, error) { return false, errors.New("ssm down") })

	service := setupScaleMonitorService(primary, writer)

	err := service.Tick(t.Context())
	require.EqualError(t, err, "could not determine primary host state: ssm down")
	assert.Zero(t, writer.writes())
}

func TestScaleMonitorService_Tick_CollectFails_AbortsWholeBatch(t *testing.T) {
	writer := &recordingWriter{}
	healthy := newCounterMonitor("healthy", 1)
	broken := newCounterMonitor("broken", 1)
	broken.err = errors.New("queue unavailable")

	service := setupScaleMonitorService(
		internal.StaticPrimary(true),
		writer,
		internal.AdaptMonitor[counterSample](healthy),
		internal.AdaptMonitor[counterSample](broken),
	)

	err := service.Tick(t.Context())
	require.EqualError(t, err, "could not collect metrics sample for function broken: queue unavailable")
	assert.Zero(t, writer.writes())
}

func TestScaleMonitorService_Tick_MonitorPanics_ReturnsError(t *testing.T) {
	writer := &recordingWriter{}

	monitor := new(MockMonitor)
	defer monitor.AssertExpectations(t)

	monitor.On("Descriptor").Return(internal.MonitorDescriptor{FunctionID: "flaky", TriggerType: "queue", ResourceID: "orders"})
	monitor.On("CollectSample", mock.Anything).Run(func(mock.Arguments) { panic("nil queue client") })

	service := setupScaleMonitorService(internal.StaticPrimary(true), writer, monitor)

	err := service.Tick(t.Context())
	require.EqualError(t, err, "monitor for function flaky panicked while collecting metrics sample: nil queue client")
	assert.False(t, internal.IsFatal(err))
	assert.Zero(t, writer.writes())
}

func TestScaleMonitorService_Tick_WriteFails_ReturnsError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("throttled")}

	service := setupScaleMonitorService(internal.StaticPrimary(true), writer, internal.AdaptMonitor[counterSample](newCounterMonitor("a", 1)))

	err := service.Tick(t.Context())
	require.EqualError(t, err, "could not persist metrics samples: throttled")
}

func TestScaleMonitorService_Tick_NoMonitors_WritesEmptyBatch(t *testing.T) {
	writer := &recordingWriter{}

	service := setupScaleMonitorService(internal.StaticPrimary(true), writer)

	require.NoError(t, service.Tick(t.Context()))
	require.Len(t, writer.batches, 1)
	assert.Empty(t, writer.batches[0])
}

func TestScaleMonitorService_Start_Disabled_IsNoop(t *testing.T) {
	var calls atomic.Int32
	primary := primaryFunc(func(context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	})

	service := internal.NewScaleMonitorService(
		internal.NewMonitorManager(),
		&recordingWriter{},
		primary,
		internal.ScaleMonitorServiceConfig{Enabled: false, Interval: time.Millisecond},
		newTestLogger(),
		newTestTracer(),
	)

	require.NoError(t, service.Start(t.Context()))
	assert.Nil(t, service.Done())

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())

	require.NoError(t, service.Stop(t.Context()))
}

func TestScaleMonitorService_Start_Twice_ReturnsError(t *testing.T) {
	service := setupScaleMonitorService(internal.StaticPrimary(false), &recordingWriter{})

	require.NoError(t, service.Start(t.Context()))
	defer service.Stop(t.Context())

	require.EqualError(t, service.Start(t.Context()), "scale monitor service already started")
}

func TestScaleMonitorService_Stop_NeverStarted_IsNoop(t *testing.T) {
	service := setupScaleMonitorService(internal.StaticPrimary(true), &recordingWriter{})

	require.NoError(t, service.Stop(t.Context()))
	require.NoError(t, service.Stop(t.Context()))
}

func TestScaleMonitorService_Loop_SamplesPeriodically(t *testing.T) {
	writer := &recordingWriter{}

	service := setupScaleMonitorService(internal.StaticPrimary(true), writer, internal.AdaptMonitor[counterSample](newCounterMonitor("a", 1)))

	require.NoError(t, service.Start(t.Context()))

	require.Eventually(t, func() bool { return writer.writes() >= 3 }, time.Second, time.Millisecond)

	require.NoError(t, service.Stop(t.Context()))

	stopped := writer.writes()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, writer.writes())

	select {
	case <-service.Done():
	default:
		t.Fatal("loop should have exited")
	}
	assert.NoError(t, service.Err())
}

func TestScaleMonitorService_Loop_ContinuesAfterError(t *testing.T) {
	var calls atomic.Int32
	primary := primaryFunc(func(context.Context) (bool, error) {
		calls.Add(1)
		return false, errors.New("transient")
	})

	service := setupScaleMonitorService(primary, &recordingWriter{})

	require.NoError(t, service.Start(t.Context()))
	defer service.Stop(t.Context())

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.NoError(t, service.Err())
}

func TestScaleMonitorService_Loop_FatalErrorStopsLoop(t *testing.T) {
	writer := &recordingWriter{}
	monitor := newCounterMonitor("a", 1)
	monitor.err = &internal.FatalError{Err: errors.New("out of memory")}

	service := setupScaleMonitorService(internal.StaticPrimary(true), writer, internal.AdaptMonitor[counterSample](monitor))

	require.NoError(t, service.Start(t.Context()))

	select {
	case <-service.Done():
	case <-time.After(time.Second):
		t.Fatal("loop should have stopped on a fatal error")
	}

	err := service.Err()
	require.Error(t, err)
	assert.True(t, internal.IsFatal(err))
	assert.ErrorContains(t, err, "out of memory")
	assert.Zero(t, writer.writes())

	require.NoError(t, service.Stop(t.Context()))
}

func TestScaleMonitorService_Stop_WaitsForInFlightTick(t *testing.T) {
	store, _ := setupMetricsStore()

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	monitor := new(MockMonitor)
	defer monitor.AssertExpectations(t)

	monitor.On("Descriptor").Return(internal.MonitorDescriptor{FunctionID: "slow", TriggerType: "queue", ResourceID: "orders"})
	monitor.On("NewSample").Return(func() internal.Sample { return &counterSample{} })
	monitor.On("CollectSample", mock.Anything).Run(func(mock.Arguments) {
		once.Do(func() { close(started) })
		<-release
	}).Return(&counterSample{Count: 42}, nil).Once()

	service := setupScaleMonitorService(internal.StaticPrimary(true), store, monitor)

	require.NoError(t, service.Start(t.Context()))
	<-started

	stopped := make(chan error, 1)
	go func() { stopped <- service.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight tick finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the tick finished")
	}

	out, err := store.Read(t.Context(), []internal.Monitor{monitor})
	require.NoError(t, err)
	assert.Equal(t, []int{42}, counts(t, out[0].Metrics))
}

func TestScaleMonitorService_Stop_TimesOutWaitingForTick(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	var once sync.Once
	primary := primaryFunc(func(context.Context) (bool, error) {
		once.Do(func() { close(started) })
		<-release
		return false, nil
	})

	service := setupScaleMonitorService(primary, &recordingWriter{})

	require.NoError(t, service.Start(t.Context()))
	<-started

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	err := service.Stop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsFatal(t *testing.T) {
	fatal := &internal.FatalError{Err: errors.New("boom")}

	assert.True(t, internal.IsFatal(fatal))
	assert.True(t, internal.IsFatal(errors.Join(errors.New("other"), fatal)))
	assert.False(t, internal.IsFatal(errors.New("boom")))
	assert.False(t, internal.IsFatal(nil))
	assert.Equal(t, "fatal: boom", fatal.Error())
}
