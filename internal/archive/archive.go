// Package archive stores raw import payloads in S3 before they are
// reconciled. An archived payload makes a bad import replayable: the original
// webhook body survives even when individual records fail validation.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/clinichq/admin-api/internal/pkg/logger"
)

// S3API is the subset of the S3 client the archiver uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes import payloads to an S3 bucket. A nil Archiver (or one
// created with an empty bucket) is a no-op so local development works without
// AWS credentials.
type Archiver struct {
	client S3API
	bucket string
}

// New creates an S3-backed archiver. An empty bucket disables archival.
func New(ctx context.Context, bucket, region string) (*Archiver, error) {
	if bucket == "" {
		return &Archiver{}, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for import archive: %w", err)
	}
	return &Archiver{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// NewWithClient creates an archiver with an explicit client. Used in tests.
func NewWithClient(client S3API, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// SavePayload archives one raw payload and returns the object key. Archival
// failures are logged, never fatal: the import itself must not depend on S3
// being reachable.
func (a *Archiver) SavePayload(ctx context.Context, source string, payload []byte) string {
	if a == nil || a.client == nil || a.bucket == "" {
		return ""
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("imports/%s/%s/%s.json",
		source, now.Format("2006/01/02"), uuid.New().String())

	contentType := "application/json"
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: &contentType,
	})
	if err != nil {
		logger.Warn("failed to archive import payload",
			"bucket", a.bucket, "key", key, "error", err)
		return ""
	}

	logger.Info("archived import payload", "key", key, "bytes", len(payload))
	return key
}
