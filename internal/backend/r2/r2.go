// Package r2 stores objects in an S3 compatible bucket such as Cloudflare R2.
// Logical buckets become key prefixes inside the one physical bucket.
package r2

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bilgisen/pressdesk/internal/logger"
)

// Config holds the R2 connection settings
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
	Region          string
}

// API is the part of the S3 client the store uses
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Store is an ObjectStore backed by an S3 compatible bucket
type Store struct {
	api       API
	bucket    string
	publicURL string
}

// New creates a store connected to the configured endpoint
func New(ctx context.Context, cfg Config) (*Store, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return NewWithAPI(client, cfg.Bucket, cfg.PublicURL), nil
}

// NewWithAPI creates a store on top of an existing client
func NewWithAPI(api API, bucket, publicURL string) *Store {
	return &Store{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *Store) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(bucket, key)),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"upload-source": "pressdesk",
		},
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to R2: %w", err)
	}

	logger.Get().Debug().
		Str("bucket", s.bucket).
		Str("key", objectKey(bucket, key)).
		Int64("size", size).
		Msg("uploaded object")
	return nil
}

func (s *Store) PublicURL(bucket, key string) string {
	return s.publicURL + "/" + url.PathEscape(bucket) + "/" + url.PathEscape(key)
}

func (s *Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(objectKey(bucket, k))})
	}

	out, err := s.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects from R2: %w", err)
	}
	if out != nil && len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to delete %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}
