package ifaces

import "context"

// GCSObjects is an interface for the subset of the Cloud Storage client that
// we use to keep the metrics document.
//
//go:generate mockery --output ./ --name GCSObjects --filename mock_gcs_objects.go --outpkg ifaces --structname MockGCSObjects
type GCSObjects interface {
	// ObjectExists reports whether the object is present in the bucket.
	ObjectExists(ctx context.Context, bucket, name string) (bool, error)

	// ReadObject returns the full content of the object.
	ReadObject(ctx context.Context, bucket, name string) ([]byte, error)

	// WriteObject replaces the object. The new content only becomes visible
	// once it has been written completely.
	WriteObject(ctx context.Context, bucket, name string, content []byte) error

	// Close releases resources held by the client.
	Close() error
}
