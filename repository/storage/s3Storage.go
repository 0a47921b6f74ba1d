package storagerepo

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Repo stores uploaded files (identity documents, item images) and returns a
// public URL. Delete exists so a failed order creation can clean up an
// already-uploaded document.
type Repo interface {
	Store(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type s3Repo struct {
	client *s3.Client
	bucket string
	region string
	logger zerolog.Logger
}

func NewS3(ctx context.Context, bucket, region string, logger zerolog.Logger) (Repo, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &s3Repo{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		logger: logger.With().Str("repository", "storage").Logger(),
	}, nil
}

func (r *s3Repo) Store(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("upload failed")
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", r.bucket, r.region, key), nil
}

func (r *s3Repo) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("delete failed")
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
