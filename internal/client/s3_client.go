package client

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"project-tracker-api/internal/config"
	"project-tracker-api/internal/metrics"
)

// PresignExpiry is how long an upload URL stays valid
const PresignExpiry = 5 * time.Minute

// S3ClientInterface defines the object storage operations used by attachments
type S3ClientInterface interface {
	GenerateFileKey(collection, fileName string) (string, error)
	GeneratePresignedURL(ctx context.Context, collection, fileName, contentType string) (uploadURL, fileKey string, err error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
}

// S3Client wraps the AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string // set for MinIO and other S3 compatible stores
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewS3Client creates a new S3 client. m may be nil.
func NewS3Client(ctx context.Context, cfg config.S3Config, m *metrics.Metrics) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}
	if cfg.Endpoint != "" && (cfg.AccessKey == "" || cfg.SecretKey == "") {
		return nil, fmt.Errorf("access key and secret key are required for a custom endpoint")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      endpoint,
		metrics:       m,
		now:           time.Now,
	}, nil
}

// GenerateFileKey builds a unique key: tracker/{collection}/{yyyy}/{mm}/{uuid}{ext}
func (c *S3Client) GenerateFileKey(collection, fileName string) (string, error) {
	return buildFileKey(collection, fileName, c.now())
}

func buildFileKey(collection, fileName string, now time.Time) (string, error) {
	if collection == "" || strings.ContainsAny(collection, "/.") {
		return "", fmt.Errorf("invalid collection: %q", collection)
	}
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("tracker/%s/%s/%s/%s%s",
		collection, now.Format("2006"), now.Format("01"), uuid.NewString(), ext), nil
}

// GeneratePresignedURL signs a PUT for a fresh key under collection
func (c *S3Client) GeneratePresignedURL(ctx context.Context, collection, fileName, contentType string) (string, string, error) {
	fileKey, err := c.GenerateFileKey(collection, fileName)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}

	start := time.Now()
	req, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fileKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = PresignExpiry
	})
	c.record("s3/presign", http.MethodPut, start, err)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return req.URL, fileKey, nil
}

// DeleteFile deletes an object; deleting a missing key succeeds
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	start := time.Now()
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	c.record("s3/delete", http.MethodDelete, start, err)
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the download URL for key
func (c *S3Client) GetFileURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

func (c *S3Client) record(endpoint, method string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}
	c.metrics.RecordExternalAPICall(endpoint, method, status, time.Since(start), err)
}
