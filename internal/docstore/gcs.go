package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/scalemonitor/internal/ifaces"
)

// GCSStore keeps the document as a single Cloud Storage object.
type GCSStore struct {
	// Clients.
	Objects ifaces.GCSObjects

	// Configuration.
	Bucket string
	Name   string

	// Telemetry.
	Tracer trace.Tracer
}

func (s *GCSStore) Exists(ctx context.Context) (bool, error) {
	ctx, span := s.startSpan(ctx, "gcp.storage.exists")
	defer span.End()

	exists, err := s.Objects.ObjectExists(ctx, s.Bucket, s.Name)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("could not get object attributes: %w", err)
	}

	return exists, nil
}

func (s *GCSStore) Download(ctx context.Context) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "gcp.storage.read")
	defer span.End()

	content, err := s.Objects.ReadObject(ctx, s.Bucket, s.Name)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not read object: %w", err)
	}

	span.SetAttributes(attribute.Int("bytes", len(content)))

	return content, nil
}

func (s *GCSStore) Upload(ctx context.Context, content []byte) error {
	ctx, span := s.startSpan(ctx, "gcp.storage.write")
	defer span.End()

	span.SetAttributes(attribute.Int("bytes", len(content)))

	if err := s.Objects.WriteObject(ctx, s.Bucket, s.Name, content); err != nil {
		span.RecordError(err)
		return fmt.Errorf("could not write object: %w", err)
	}

	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.Objects.Close()
}

func (s *GCSStore) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := s.Tracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("bucket", s.Bucket),
		attribute.String("object", s.Name),
	)
	return ctx, span
}

// gcsClient wraps the Cloud Storage SDK client to implement the GCSObjects
// interface.
type gcsClient struct {
	client *storage.Client
}

// NewGCSClient adapts an SDK client to the GCSObjects interface.
func NewGCSClient(client *storage.Client) ifaces.GCSObjects {
	return &gcsClient{client: client}
}

func (c *gcsClient) ObjectExists(ctx context.Context, bucket, name string) (bool, error) {
	_, err := c.client.Bucket(bucket).Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (c *gcsClient) ReadObject(ctx context.Context, bucket, name string) ([]byte, error) {
	reader, err := c.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func (c *gcsClient) WriteObject(ctx context.Context, bucket, name string, content []byte) error {
	// Cancelling the context abandons the upload without touching the
	// existing object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := c.client.Bucket(bucket).Object(name).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(content); err != nil {
		return err
	}

	return writer.Close()
}

func (c *gcsClient) Close() error {
	return c.client.Close()
}
