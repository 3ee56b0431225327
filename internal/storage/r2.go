package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dkaraca/briefly/internal/logger"
)

// R2Uploader mirrors archived digests to a Cloudflare R2 bucket through
// the S3-compatible API. Uploads are best-effort: the local archive is
// the source of truth.
type R2Uploader struct {
	client *s3.Client
	bucket string
}

// NewR2Uploader builds an uploader against the given R2 endpoint.
func NewR2Uploader(ctx context.Context, endpoint, accessKey, secretKey, bucket string) (*R2Uploader, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("r2 storage is not fully configured")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Uploader{client: client, bucket: bucket}, nil
}

// Upload stores one digest JSON document under digests/<id>.json.
func (u *R2Uploader) Upload(ctx context.Context, id string, data []byte) error {
	key := "digests/" + id + ".json"
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload digest %s: %w", id, err)
	}
	logger.Info().Str("key", key).Str("bucket", u.bucket).Msg("Digest uploaded to R2")
	return nil
}
