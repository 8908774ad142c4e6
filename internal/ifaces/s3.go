package ifaces

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 is an interface which mocks the subset of the S3 client that we use to
// keep the metrics document.
//
//go:generate mockery --inpackage --name S3 --filename mock_s3.go
type S3 interface {
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}
