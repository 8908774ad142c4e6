package monitors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/spacelift-io/scalemonitor/internal"
)

// EndpointSample is the value read from a monitored endpoint at one point in
// time.
type EndpointSample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// EndpointMonitor samples a numeric backlog from a JSON HTTP endpoint, such as
// the length of a queue, and votes based on how it compares to the load a
// single worker is expected to handle.
type EndpointMonitor struct {
	config EndpointConfig
	client *http.Client
	now    func() time.Time
}

func NewEndpointMonitor(config EndpointConfig, client *http.Client) *EndpointMonitor {
	return &EndpointMonitor{config: config, client: client, now: time.Now}
}

// NewMonitors builds registrable monitors for every configured endpoint. All
// of them share one instrumented HTTP client.
func NewMonitors(cfg *Config) []internal.Monitor {
	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	monitors := make([]internal.Monitor, 0, len(cfg.Endpoints))
	for _, endpoint := range cfg.Endpoints {
		monitors = append(monitors, internal.AdaptMonitor[EndpointSample](NewEndpointMonitor(endpoint, client)))
	}

	return monitors
}

func (m *EndpointMonitor) Descriptor() internal.MonitorDescriptor {
	return internal.MonitorDescriptor{
		FunctionID:  m.config.FunctionID,
		TriggerType: m.config.TriggerType,
		ResourceID:  m.config.ResourceID,
	}
}

func (m *EndpointMonitor) CollectSample(ctx context.Context) (EndpointSample, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.config.URL, nil)
	if err != nil {
		return EndpointSample{}, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return EndpointSample{}, fmt.Errorf("could not query endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return EndpointSample{}, fmt.Errorf("unexpected status code %d from endpoint", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return EndpointSample{}, fmt.Errorf("could not read endpoint response: %w", err)
	}

	result := gjson.GetBytes(body, m.config.Value)
	if !result.Exists() {
		return EndpointSample{}, fmt.Errorf("path %q not found in endpoint response", m.config.Value)
	} else if result.Type != gjson.Number {
		return EndpointSample{}, fmt.Errorf("value at path %q is not a number", m.config.Value)
	}

	return EndpointSample{Value: result.Float(), Timestamp: m.now().UTC()}, nil
}

// Vote scales out as soon as the latest backlog exceeds what the current
// workers can handle. Scaling in needs a full window of history showing
// either no backlog at all or a steadily shrinking one that one worker less
// could still handle.
func (m *EndpointMonitor) Vote(_ context.Context, workerCount int, history []EndpointSample) (internal.ScaleVote, error) {
	if len(history) == 0 {
		return internal.ScaleVoteNone, nil
	}

	target := m.config.TargetPerWorker
	latest := history[len(history)-1].Value

	if latest > float64(workerCount)*target {
		return internal.ScaleVoteScaleOut, nil
	}

	if workerCount == 0 || len(history) < internal.MaxMetricsCount {
		return internal.ScaleVoteNone, nil
	}

	idle, decreasing := true, true
	for i, sample := range history {
		if sample.Value != 0 {
			idle = false
		}
		if i > 0 && sample.Value >= history[i-1].Value {
			decreasing = false
		}
	}

	if idle {
		return internal.ScaleVoteScaleIn, nil
	}

	if decreasing && latest < float64(workerCount-1)*target {
		return internal.ScaleVoteScaleIn, nil
	}

	return internal.ScaleVoteNone, nil
}
