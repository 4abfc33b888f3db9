package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Storage persists a finished export and returns a URL it can be fetched from
type Storage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// S3Config holds S3 storage configuration
type S3Config struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	Bucket             string
	URLTTL             time.Duration // Lifetime of presigned download URLs
}

// S3Storage uploads exports to a bucket and hands out presigned GET URLs
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	urlTTL  time.Duration
}

// NewS3Storage creates an S3-backed export store. Static credentials are
// used when both keys are set, otherwise the default AWS chain applies.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		urlTTL:  ttl,
	}, nil
}

// Put uploads body under key and returns a presigned download URL
func (s *S3Storage) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return req.URL, nil
}
