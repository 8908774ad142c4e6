package internal

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// StorageBackend represents the object store holding the metrics document.
type StorageBackend string

const (
	StorageBackendMemory StorageBackend = "memory"
	StorageBackendFile   StorageBackend = "file"
	StorageBackendSQLite StorageBackend = "sqlite"
	StorageBackendS3     StorageBackend = "s3"
	StorageBackendAzure  StorageBackend = "azure"
	StorageBackendGCS    StorageBackend = "gcs"
)

// TracingExporter selects where spans are sent.
type TracingExporter string

const (
	TracingExporterNone   TracingExporter = "none"
	TracingExporterStdout TracingExporter = "stdout"
	TracingExporterXRay   TracingExporter = "xray"
)

type RuntimeConfig struct {
	// Common fields - used by all backends
	HostID                 string          `env:"SCALE_HOST_ID,notEmpty"`
	ScaleMonitoringEnabled bool            `env:"SCALE_MONITORING_ENABLED" envDefault:"true"`
	SamplingInterval       time.Duration   `env:"SCALE_SAMPLING_INTERVAL" envDefault:"10s"`
	MaxConcurrentSamples   int             `env:"SCALE_MAX_CONCURRENT_SAMPLES" envDefault:"8"`
	StorageBackend         StorageBackend  `env:"SCALE_STORAGE_BACKEND" envDefault:"file"`
	MonitorsFile           string          `env:"SCALE_MONITORS_FILE"`
	StatusAddress          string          `env:"SCALE_STATUS_ADDRESS" envDefault:":8080"`
	WorkerCount            int             `env:"SCALE_WORKER_COUNT" envDefault:"0"`
	TracingExporter        TracingExporter `env:"TRACING_EXPORTER" envDefault:"none"`

	// Primary signal. Without a parameter name the static flag is used.
	Primary          bool   `env:"SCALE_PRIMARY" envDefault:"true"`
	PrimaryParameter string `env:"SCALE_PRIMARY_PARAMETER"`
	PrimaryRegion    string `env:"SCALE_PRIMARY_REGION"`
	InstanceID       string `env:"SCALE_INSTANCE_ID"`

	// Local file backend - use fileEnv/fileEnvDefault tags
	FileDir string `fileEnv:"SCALE_FILE_DIR" fileEnvDefault:"."`

	// SQLite backend - use sqliteEnv tag
	SQLitePath string `sqliteEnv:"SCALE_SQLITE_PATH,notEmpty"`

	// S3 backend - use s3Env tag
	S3Bucket string `s3Env:"SCALE_S3_BUCKET,notEmpty"`
	S3Region string `s3Env:"SCALE_S3_REGION,notEmpty"`

	// Azure backend - use azEnv/azEnvDefault tags. Without a Key Vault the account URL is
	// used with the default Azure credential.
	AzureStorageAccountURL       string `azEnv:"AZURE_STORAGE_ACCOUNT_URL"`
	AzureStorageContainer        string `azEnv:"AZURE_STORAGE_CONTAINER" azEnvDefault:"azure-webjobs-hosts"`
	AzureKeyVaultName            string `azEnv:"AZURE_KEY_VAULT_NAME"`
	AzureStorageConnectionSecret string `azEnv:"AZURE_STORAGE_CONNECTION_SECRET"`

	// GCS backend - use gcsEnv tag
	GCSBucket string `gcsEnv:"SCALE_GCS_BUCKET,notEmpty"`
}

// Parse parses environment variables into the config, including the fields
// specific to the selected storage backend.
func (r *RuntimeConfig) Parse() error {
	var allErrors env.AggregateError

	appendErr := func(err error) {
		if aggErr, ok := err.(env.AggregateError); ok {
			allErrors.Errors = append(allErrors.Errors, aggErr.Errors...)
		} else {
			allErrors.Errors = append(allErrors.Errors, err)
		}
	}

	if err := env.Parse(r); err != nil {
		appendErr(err)
	}

	var tag string

	switch r.StorageBackend {
	case StorageBackendMemory:
	case StorageBackendFile:
		tag = "fileEnv"
	case StorageBackendSQLite:
		tag = "sqliteEnv"
	case StorageBackendS3:
		tag = "s3Env"
	case StorageBackendAzure:
		tag = "azEnv"
	case StorageBackendGCS:
		tag = "gcsEnv"
	default:
		appendErr(fmt.Errorf("unknown storage backend %q", r.StorageBackend))
	}

	if tag != "" {
		// Each backend carries its own default tag so this pass cannot reset
		// common fields to their defaults.
		opts := env.Options{TagName: tag, DefaultValueTagName: tag + "Default"}
		if err := env.ParseWithOptions(r, opts); err != nil {
			appendErr(err)
		}
	}

	if r.PrimaryParameter != "" && r.InstanceID == "" {
		appendErr(errors.New("SCALE_INSTANCE_ID is required when SCALE_PRIMARY_PARAMETER is set"))
	}

	if r.StorageBackend == StorageBackendAzure && r.AzureStorageAccountURL == "" &&
		(r.AzureKeyVaultName == "" || r.AzureStorageConnectionSecret == "") {
		appendErr(errors.New("either AZURE_STORAGE_ACCOUNT_URL or AZURE_KEY_VAULT_NAME and AZURE_STORAGE_CONNECTION_SECRET are required"))
	}

	switch r.TracingExporter {
	case TracingExporterNone, TracingExporterStdout, TracingExporterXRay:
	default:
		appendErr(fmt.Errorf("unknown tracing exporter %q", r.TracingExporter))
	}

	if len(allErrors.Errors) > 0 {
		return allErrors
	}
	return nil
}

// MetricsBlobName is the name of the metrics document for this host.
func (r RuntimeConfig) MetricsBlobName() string {
	return fmt.Sprintf("scale/%s/metrics.json", r.HostID)
}

// ServiceConfig returns the sampling loop settings.
func (r RuntimeConfig) ServiceConfig() ScaleMonitorServiceConfig {
	return ScaleMonitorServiceConfig{
		Enabled:              r.ScaleMonitoringEnabled,
		Interval:             r.SamplingInterval,
		MaxConcurrentSamples: r.MaxConcurrentSamples,
	}
}
