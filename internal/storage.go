package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel"

	"github.com/spacelift-io/scalemonitor/internal/docstore"
	"github.com/spacelift-io/scalemonitor/internal/ifaces"
)

const docstoreTracerName = "github.com/spacelift-io/scalemonitor/internal/docstore"

// NewBlobStore creates the store holding this host's metrics document for the
// configured backend. Stores that hold resources also implement io.Closer.
func NewBlobStore(ctx context.Context, cfg *RuntimeConfig) (BlobStore, error) {
	name := cfg.MetricsBlobName()

	switch cfg.StorageBackend {
	case StorageBackendMemory:
		return docstore.NewMemoryStore(), nil
	case StorageBackendFile:
		return docstore.NewFileStore(cfg.FileDir, name), nil
	case StorageBackendSQLite:
		store, err := docstore.NewSQLiteStore(cfg.SQLitePath, name)
		if err != nil {
			return nil, fmt.Errorf("could not open SQLite metrics store: %w", err)
		}
		return store, nil
	case StorageBackendS3:
		store, err := newS3Store(ctx, cfg, name)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageBackendAzure:
		store, err := newAzureBlobStore(ctx, cfg, name)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageBackendGCS:
		store, err := newGCSStore(ctx, cfg, name)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newS3Store(ctx context.Context, cfg *RuntimeConfig, name string) (*docstore.S3Store, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("could not load AWS configuration: %w", err)
	}

	otelaws.AppendMiddlewares(&awsConfig.APIOptions)

	return &docstore.S3Store{
		S3:     s3.NewFromConfig(awsConfig),
		Bucket: cfg.S3Bucket,
		Key:    name,
		Tracer: otel.Tracer(docstoreTracerName),
	}, nil
}

func newAzureBlobStore(ctx context.Context, cfg *RuntimeConfig, name string) (*docstore.AzureBlobStore, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create Azure credential: %w", err)
	}

	var client *azblob.Client

	if cfg.AzureKeyVaultName != "" && cfg.AzureStorageConnectionSecret != "" {
		vaultURL := fmt.Sprintf("https://%s.vault.azure.net", cfg.AzureKeyVaultName)

		kvClient, err := azsecrets.NewClient(vaultURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("could not create Azure Key Vault client: %w", err)
		}

		connectionString, err := storageConnectionString(ctx, &azureKeyVaultClient{client: kvClient}, cfg.AzureStorageConnectionSecret)
		if err != nil {
			return nil, err
		}

		if client, err = azblob.NewClientFromConnectionString(connectionString, nil); err != nil {
			return nil, fmt.Errorf("could not create Azure Blob Storage client from connection string: %w", err)
		}
	} else {
		if client, err = azblob.NewClient(cfg.AzureStorageAccountURL, cred, nil); err != nil {
			return nil, fmt.Errorf("could not create Azure Blob Storage client: %w", err)
		}
	}

	return &docstore.AzureBlobStore{
		Blob:      docstore.NewAzureBlobClient(client),
		Container: cfg.AzureStorageContainer,
		Name:      name,
		Tracer:    otel.Tracer(docstoreTracerName),
	}, nil
}

// azureKeyVaultClient wraps the Azure Key Vault SDK client to implement the AzureKeyVault interface.
type azureKeyVaultClient struct {
	client *azsecrets.Client
}

func (c *azureKeyVaultClient) GetSecret(ctx context.Context, secretName string) (azsecrets.GetSecretResponse, error) {
	return c.client.GetSecret(ctx, secretName, "", nil)
}

// storageConnectionString reads the storage account connection string from
// Key Vault.
func storageConnectionString(ctx context.Context, keyVault ifaces.AzureKeyVault, secretName string) (string, error) {
	secret, err := keyVault.GetSecret(ctx, secretName)
	if err != nil {
		return "", fmt.Errorf("could not get storage connection string secret from Key Vault: %w", err)
	}

	if secret.Value == nil || strings.TrimSpace(*secret.Value) == "" {
		return "", errors.New("could not find storage connection string secret value in Key Vault")
	}

	return strings.TrimSpace(*secret.Value), nil
}

func newGCSStore(ctx context.Context, cfg *RuntimeConfig, name string) (*docstore.GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not create Cloud Storage client: %w", err)
	}

	return &docstore.GCSStore{
		Objects: docstore.NewGCSClient(client),
		Bucket:  cfg.GCSBucket,
		Name:    name,
		Tracer:  otel.Tracer(docstoreTracerName),
	}, nil
}

// NewPrimaryProvider returns the source of the primary host signal. Without
// an SSM parameter the static flag from the environment is used.
func NewPrimaryProvider(ctx context.Context, cfg *RuntimeConfig) (PrimaryHostStateProvider, error) {
	if cfg.PrimaryParameter == "" {
		return StaticPrimary(cfg.Primary), nil
	}

	var opts []func(*config.LoadOptions) error
	if cfg.PrimaryRegion != "" {
		opts = append(opts, config.WithRegion(cfg.PrimaryRegion))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not load AWS configuration: %w", err)
	}

	otelaws.AppendMiddlewares(&awsConfig.APIOptions)

	return &ParameterPrimary{
		SSM:           ssm.NewFromConfig(awsConfig),
		ParameterName: cfg.PrimaryParameter,
		InstanceID:    cfg.InstanceID,
		Tracer:        otel.Tracer("github.com/spacelift-io/scalemonitor/internal"),
	}, nil
}
