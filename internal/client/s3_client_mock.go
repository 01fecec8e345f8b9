package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockS3Client implements S3ClientInterface in memory for tests and local runs without storage
type MockS3Client struct {
	Bucket   string
	Region   string
	Endpoint string

	GeneratePresignedURLFunc func(ctx context.Context, collection, fileName, contentType string) (string, string, error)
	DeleteFileFunc           func(ctx context.Context, key string) error

	mu      sync.Mutex
	deleted []string
}

// NewMockS3Client creates a new mock S3 client
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "us-east-1",
	}
}

func (m *MockS3Client) GenerateFileKey(collection, fileName string) (string, error) {
	return buildFileKey(collection, fileName, time.Now())
}

func (m *MockS3Client) GeneratePresignedURL(ctx context.Context, collection, fileName, contentType string) (string, string, error) {
	if m.GeneratePresignedURLFunc != nil {
		return m.GeneratePresignedURLFunc(ctx, collection, fileName, contentType)
	}
	key, err := m.GenerateFileKey(collection, fileName)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}
	url := fmt.Sprintf("%s?X-Amz-Algorithm=AWS4-HMAC-SHA256&X-Amz-Expires=%d&X-Amz-Signature=mock",
		m.GetFileURL(key), int(PresignExpiry.Seconds()))
	return url, key, nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		if err := m.DeleteFileFunc(ctx, key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	return nil
}

// Deleted returns the keys removed so far
func (m *MockS3Client) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func (m *MockS3Client) GetFileURL(key string) string {
	if m.Endpoint != "" && !strings.Contains(m.Endpoint, "amazonaws.com") {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(m.Endpoint, "/"), m.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}

var _ S3ClientInterface = (*MockS3Client)(nil)
var _ S3ClientInterface = (*S3Client)(nil)
