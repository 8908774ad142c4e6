package internal

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeConfig_Parse_Defaults(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")

	cfg := &RuntimeConfig{}
	require.NoError(t, cfg.Parse())

	assert.True(t, cfg.ScaleMonitoringEnabled)
	assert.Equal(t, 10*time.Second, cfg.SamplingInterval)
	assert.Equal(t, 8, cfg.MaxConcurrentSamples)
	assert.Equal(t, StorageBackendFile, cfg.StorageBackend)
	assert.Equal(t, ".", cfg.FileDir)
	assert.Equal(t, ":8080", cfg.StatusAddress)
	assert.True(t, cfg.Primary)
	assert.Equal(t, TracingExporterNone, cfg.TracingExporter)
	assert.Equal(t, "scale/my-host/metrics.json", cfg.MetricsBlobName())

	assert.Equal(t, ScaleMonitorServiceConfig{
		Enabled:              true,
		Interval:             10 * time.Second,
		MaxConcurrentSamples: 8,
	}, cfg.ServiceConfig())
}

func TestRuntimeConfig_Parse_MissingHostID(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "")

	cfg := &RuntimeConfig{}
	err := cfg.Parse()
	require.Error(t, err)

	var aggErr env.AggregateError
	require.ErrorAs(t, err, &aggErr)
	assert.ErrorContains(t, err, "SCALE_HOST_ID")
}

func TestRuntimeConfig_Parse_S3(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_STORAGE_BACKEND", "s3")
	t.Setenv("SCALE_S3_BUCKET", "scale-bucket")
	t.Setenv("SCALE_S3_REGION", "eu-west-1")
	t.Setenv("SCALE_SAMPLING_INTERVAL", "30s")

	cfg := &RuntimeConfig{}
	require.NoError(t, cfg.Parse())

	assert.Equal(t, StorageBackendS3, cfg.StorageBackend)
	assert.Equal(t, "scale-bucket", cfg.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.S3Region)

	// The second pass must not reset common fields to their defaults.
	assert.Equal(t, 30*time.Second, cfg.SamplingInterval)
}

func TestRuntimeConfig_Parse_S3_MissingBucket(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_STORAGE_BACKEND", "s3")
	t.Setenv("SCALE_S3_BUCKET", "")
	t.Setenv("SCALE_S3_REGION", "")

	cfg := &RuntimeConfig{}
	err := cfg.Parse()
	require.Error(t, err)
	assert.ErrorContains(t, err, "SCALE_S3_BUCKET")
	assert.ErrorContains(t, err, "SCALE_S3_REGION")
}

func TestRuntimeConfig_Parse_BackendFieldsIgnoredForOtherBackends(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_STORAGE_BACKEND", "memory")
	t.Setenv("SCALE_S3_BUCKET", "")
	t.Setenv("SCALE_SQLITE_PATH", "")

	cfg := &RuntimeConfig{}
	require.NoError(t, cfg.Parse())
	assert.Empty(t, cfg.S3Bucket)
}

func TestRuntimeConfig_Parse_Azure(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_STORAGE_BACKEND", "azure")
	t.Setenv("AZURE_STORAGE_ACCOUNT_URL", "https://account.blob.core.windows.net/")

	cfg := &RuntimeConfig{}
	require.NoError(t, cfg.Parse())

	assert.Equal(t, "https://account.blob.core.windows.net/", cfg.AzureStorageAccountURL)
	assert.Equal(t, "azure-webjobs-hosts", cfg.AzureStorageContainer)
}

func TestRuntimeConfig_Parse_Azure_KeyVault(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_STORAGE_BACKEND", "azure")
	t.Setenv("AZURE_STORAGE_ACCOUNT_URL", "")
	t.Setenv("AZURE_KEY_VAULT_NAME", "my-vault")
	t.Setenv("AZURE_STORAGE_CONNECTION_SECRET", "storage-connection")
	t.Setenv("AZURE_STORAGE_CONTAINER", "scale")

	cfg := &RuntimeConfig{}
	require.NoError(t, cfg.Parse())

	assert.Equal(t, "my-vault", cfg.AzureKeyVaultName)
	assert.Equal(t, "storage-connection", cfg.AzureStorageConnectionSecret)
	assert.Equal(t, "scale", cfg.AzureStorageContainer)
}

func TestRuntimeConfig_Parse_Azure_MissingLocation(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_STORAGE_BACKEND", "azure")
	t.Setenv("AZURE_STORAGE_ACCOUNT_URL", "")
	t.Setenv("AZURE_KEY_VAULT_NAME", "my-vault")
	t.Setenv("AZURE_STORAGE_CONNECTION_SECRET", "")

	cfg := &RuntimeConfig{}
	err := cfg.Parse()
	require.ErrorContains(t, err, "either AZURE_STORAGE_ACCOUNT_URL or AZURE_KEY_VAULT_NAME and AZURE_STORAGE_CONNECTION_SECRET are required")
}

func TestRuntimeConfig_Parse_PrimaryParameterNeedsInstanceID(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_PRIMARY_PARAMETER", "/scale/primary")
	t.Setenv("SCALE_INSTANCE_ID", "")

	cfg := &RuntimeConfig{}
	err := cfg.Parse()
	require.ErrorContains(t, err, "SCALE_INSTANCE_ID is required when SCALE_PRIMARY_PARAMETER is set")
}

func TestRuntimeConfig_Parse_UnknownValues(t *testing.T) {
	t.Setenv("SCALE_HOST_ID", "my-host")
	t.Setenv("SCALE_STORAGE_BACKEND", "floppy")
	t.Setenv("TRACING_EXPORTER", "carrier-pigeon")

	cfg := &RuntimeConfig{}
	err := cfg.Parse()
	require.Error(t, err)

	var aggErr env.AggregateError
	require.ErrorAs(t, err, &aggErr)
	assert.Len(t, aggErr.Errors, 2)
	assert.ErrorContains(t, err, `unknown storage backend "floppy"`)
	assert.ErrorContains(t, err, `unknown tracing exporter "carrier-pigeon"`)
}
