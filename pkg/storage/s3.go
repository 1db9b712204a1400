package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API the uploader needs. Narrow by intent
// so tests can substitute a fake.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Config holds S3 settings for avatar storage, populated from the
// environment. Endpoint supports S3-compatible services like MinIO.
type Config struct {
	Bucket         string `env:"S3_BUCKET,required"`
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`
	BaseURL        string `env:"S3_BASE_URL,required"`
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"`
}

// S3Uploader implements Uploader on top of Amazon S3. Versions are unix
// timestamps embedded in the object key; invalidation is a fresh version, so
// old URLs simply stop being handed out.
type S3Uploader struct {
	client  S3Client
	bucket  string
	baseURL string
	now     func() time.Time
}

// S3Option configures the uploader.
type S3Option func(*s3Options)

type s3Options struct {
	client     S3Client
	httpClient *http.Client
	now        func() time.Time
}

// WithS3Client sets a pre-configured client, useful for tests.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) { o.client = client }
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) { o.httpClient = client }
}

// WithClock overrides the version clock, useful for tests.
func WithClock(now func() time.Time) S3Option {
	return func(o *s3Options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewS3Uploader creates an avatar uploader over S3.
func NewS3Uploader(ctx context.Context, cfg Config, opts ...S3Option) (*S3Uploader, error) {
	if cfg.Bucket == "" || cfg.Region == "" || cfg.BaseURL == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{now: time.Now}
	for _, opt := range opts {
		opt(options)
	}

	client := options.client
	if client == nil {
		awsOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		if options.httpClient != nil {
			awsOpts = append(awsOpts, awsconfig.WithHTTPClient(options.httpClient))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			return nil, fmt.Errorf("storage: failed to load aws config: %w", err)
		}

		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &S3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		now:     options.now,
	}, nil
}

// Upload stores the image bytes under a versioned key. Without overwrite an
// existing public id is rejected.
func (u *S3Uploader) Upload(ctx context.Context, fileData []byte, publicID string, overwrite, invalidate bool) (*UploadResult, error) {
	if len(fileData) == 0 {
		return nil, ErrEmptyFile
	}
	if publicID == "" {
		return nil, fmt.Errorf("%w: empty public id", ErrUploadFailed)
	}

	version := u.now().Unix()
	if !overwrite {
		if u.exists(ctx, u.key(publicID, version)) {
			return nil, fmt.Errorf("%w: object %q already exists", ErrUploadFailed, publicID)
		}
	}

	contentType := http.DetectContentType(fileData)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(u.key(publicID, version)),
		Body:        bytes.NewReader(fileData),
		ContentType: aws.String(contentType),
	}
	if invalidate {
		input.CacheControl = aws.String("no-cache")
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s: %s", ErrUploadFailed, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return nil, errors.Join(ErrUploadFailed, err)
	}

	return &UploadResult{PublicID: publicID, Version: version}, nil
}

// URL returns the public URL for a stored image version, shaped
// <base>/v<version>/<publicID>.
func (u *S3Uploader) URL(publicID string, version int64) string {
	return fmt.Sprintf("%s/v%d/%s", u.baseURL, version, publicID)
}

func (u *S3Uploader) key(publicID string, version int64) string {
	return fmt.Sprintf("v%d/%s", version, publicID)
}

func (u *S3Uploader) exists(ctx context.Context, key string) bool {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}
