package monitors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultTriggerType = "http"
	defaultTimeout     = 5 * time.Second
)

// EndpointConfig declares a single endpoint monitor.
type EndpointConfig struct {
	FunctionID       string  `toml:"FunctionID"`
	TriggerType      string  `toml:"TriggerType"`
	ResourceID       string  `toml:"ResourceID"`
	URL              string  `toml:"URL"`
	Value            string  `toml:"Value"`
	TargetPerWorker  float64 `toml:"TargetPerWorker"`
	TimeoutInSeconds uint32  `toml:"TimeoutInSeconds"`
}

// Config maps to the monitors TOML file.
type Config struct {
	Endpoints []EndpointConfig `toml:"Endpoints"`
}

// LoadConfig parses a TOML file into the Config struct and validates it.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("could not read monitors file %q: %w", filepath, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes and validates monitor definitions.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not decode monitors file: %w", err)
	}

	var errs []error
	for i := range cfg.Endpoints {
		endpoint := &cfg.Endpoints[i]

		if endpoint.TriggerType == "" {
			endpoint.TriggerType = defaultTriggerType
		}

		if err := endpoint.validate(); err != nil {
			errs = append(errs, fmt.Errorf("endpoint %d: %w", i, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (e EndpointConfig) validate() error {
	var missing []string

	if e.FunctionID == "" {
		missing = append(missing, "FunctionID")
	}
	if e.URL == "" {
		missing = append(missing, "URL")
	}
	if e.Value == "" {
		missing = append(missing, "Value")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	if e.TargetPerWorker <= 0 {
		return errors.New("TargetPerWorker must be positive")
	}

	return nil
}

// Timeout is the request timeout for a single sample.
func (e EndpointConfig) Timeout() time.Duration {
	if e.TimeoutInSeconds == 0 {
		return defaultTimeout
	}
	return time.Duration(e.TimeoutInSeconds) * time.Second
}
