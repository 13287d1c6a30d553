package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	consoleapp "github.com/britrip/hotelier/internal/application/console"
	infraconfig "github.com/britrip/hotelier/internal/infrastructure/config"
	"go.uber.org/zap"
)

// maxPresignExpiry is the longest lifetime S3 allows for a presigned URL
const maxPresignExpiry = 7 * 24 * time.Hour

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// S3AssetStore uploads photos to an S3-compatible bucket and returns their URL.
// With a public base URL the object URL is built from it, otherwise a
// presigned GET URL is returned.
type S3AssetStore struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// S3Option configures an S3AssetStore
type S3Option func(*S3AssetStore)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3AssetStore) {
		s.logger = logger
	}
}

// NewS3AssetStore creates a store from configuration
func NewS3AssetStore(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3Option) (*S3AssetStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	s := &S3AssetStore{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureBucket creates the bucket when it does not exist
func (s *S3AssetStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("creating photo bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store implements consoleapp.AssetStore. key is extended with an extension
// derived from the content type.
func (s *S3AssetStore) Store(ctx context.Context, key string, asset consoleapp.Asset) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	ct, err := imageContentType(asset)
	if err != nil {
		return "", err
	}
	key += extensions[ct]

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(asset.Data),
		ContentType: aws.String(ct),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	s.logger.Debug("photo uploaded", zap.String("key", key), zap.Int("bytes", len(asset.Data)))

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(maxPresignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign photo URL: %w", err)
	}
	return req.URL, nil
}

// Bucket returns the bucket name
func (s *S3AssetStore) Bucket() string {
	return s.bucket
}

var _ consoleapp.AssetStore = (*S3AssetStore)(nil)
