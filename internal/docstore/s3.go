package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/scalemonitor/internal/ifaces"
)

// S3Store keeps the document as a single S3 object.
type S3Store struct {
	// Clients.
	S3 ifaces.S3

	// Configuration.
	Bucket string
	Key    string

	// Telemetry.
	Tracer trace.Tracer
}

func (s *S3Store) Exists(ctx context.Context) (bool, error) {
	ctx, span := s.startSpan(ctx, "aws.s3.headObject")
	defer span.End()

	_, err := s.S3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})

	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}

	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("could not head S3 object: %w", err)
	}

	return true, nil
}

func (s *S3Store) Download(ctx context.Context) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "aws.s3.getObject")
	defer span.End()

	output, err := s.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})

	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not get S3 object: %w", err)
	} else if output.Body == nil {
		return nil, errors.New("S3 object has no body")
	}

	defer output.Body.Close()

	content, err := io.ReadAll(output.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not read S3 object: %w", err)
	}

	span.SetAttributes(attribute.Int("bytes", len(content)))

	return content, nil
}

func (s *S3Store) Upload(ctx context.Context, content []byte) error {
	ctx, span := s.startSpan(ctx, "aws.s3.putObject")
	defer span.End()

	span.SetAttributes(attribute.Int("bytes", len(content)))

	_, err := s.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.Key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String("application/json"),
	})

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("could not put S3 object: %w", err)
	}

	return nil
}

func (s *S3Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := s.Tracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("bucket", s.Bucket),
		attribute.String("key", s.Key),
	)
	return ctx, span
}
