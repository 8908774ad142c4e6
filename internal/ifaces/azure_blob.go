package ifaces

import "context"

// AzureBlob is an interface for the subset of the Azure Blob Storage client
// that we use to keep the metrics document.
//
//go:generate mockery --output ./ --name AzureBlob --filename mock_azure_blob.go --outpkg ifaces --structname MockAzureBlob
type AzureBlob interface {
	BlobExists(ctx context.Context, containerName string, blobName string) (bool, error)
	DownloadBlob(ctx context.Context, containerName string, blobName string) ([]byte, error)
	UploadBlob(ctx context.Context, containerName string, blobName string, content []byte) error
}
