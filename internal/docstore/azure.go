package docstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/scalemonitor/internal/ifaces"
)

// AzureBlobStore keeps the document as a single block blob.
type AzureBlobStore struct {
	// Clients.
	Blob ifaces.AzureBlob

	// Configuration.
	Container string
	Name      string

	// Telemetry.
	Tracer trace.Tracer
}

func (s *AzureBlobStore) Exists(ctx context.Context) (bool, error) {
	ctx, span := s.startSpan(ctx, "azure.blob.exists")
	defer span.End()

	exists, err := s.Blob.BlobExists(ctx, s.Container, s.Name)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("could not get blob properties: %w", err)
	}

	return exists, nil
}

func (s *AzureBlobStore) Download(ctx context.Context) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "azure.blob.download")
	defer span.End()

	content, err := s.Blob.DownloadBlob(ctx, s.Container, s.Name)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not download blob: %w", err)
	}

	span.SetAttributes(attribute.Int("bytes", len(content)))

	return content, nil
}

func (s *AzureBlobStore) Upload(ctx context.Context, content []byte) error {
	ctx, span := s.startSpan(ctx, "azure.blob.upload")
	defer span.End()

	span.SetAttributes(attribute.Int("bytes", len(content)))

	if err := s.Blob.UploadBlob(ctx, s.Container, s.Name, content); err != nil {
		span.RecordError(err)
		return fmt.Errorf("could not upload blob: %w", err)
	}

	return nil
}

func (s *AzureBlobStore) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := s.Tracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("container", s.Container),
		attribute.String("blob", s.Name),
	)
	return ctx, span
}

// azureBlobClient wraps the Azure Blob Storage SDK client to implement the
// AzureBlob interface.
type azureBlobClient struct {
	client *azblob.Client
}

// NewAzureBlobClient adapts an SDK client to the AzureBlob interface.
func NewAzureBlobClient(client *azblob.Client) ifaces.AzureBlob {
	return &azureBlobClient{client: client}
}

func (c *azureBlobClient) BlobExists(ctx context.Context, containerName string, blobName string) (bool, error) {
	blobClient := c.client.ServiceClient().NewContainerClient(containerName).NewBlobClient(blobName)

	_, err := blobClient.GetProperties(ctx, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (c *azureBlobClient) DownloadBlob(ctx context.Context, containerName string, blobName string) ([]byte, error) {
	resp, err := c.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *azureBlobClient) UploadBlob(ctx context.Context, containerName string, blobName string, content []byte) error {
	upload := func() error {
		_, err := c.client.UploadBuffer(ctx, containerName, blobName, content, &azblob.UploadBufferOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr("application/json")},
		})
		return err
	}

	err := upload()
	if !bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return err
	}

	// First write for a new storage account.
	if _, err := c.client.CreateContainer(ctx, containerName, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return err
	}

	return upload()
}
