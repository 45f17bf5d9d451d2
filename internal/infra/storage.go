package infra

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// QuoteStore persists quotation file attachments in S3-compatible object
// storage. Objects are addressed by an opaque key; the database only stores
// the key, never the bytes.
type QuoteStore struct {
	client *minio.Client
	bucket string
}

// NewQuoteStore connects to the MinIO endpoint and ensures the bucket exists.
func NewQuoteStore(ctx context.Context, cfg *config.Config) (*QuoteStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket: %w", err)
		}
	}

	return &QuoteStore{client: client, bucket: cfg.MinioBucket}, nil
}

// QuoteKey builds the storage key for a quote file:
// quotes/{partNumber}/{YYYY}/{MM}/{filename}. The upload timestamp, not the
// price validity dates, determines the year/month segments.
func QuoteKey(partNumber, filename string, uploadedAt time.Time) string {
	return path.Join("quotes", partNumber,
		uploadedAt.Format("2006"), uploadedAt.Format("01"), filename)
}

// Put uploads a quote file under the given key.
func (s *QuoteStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}

// Get streams a stored quote file. The caller must close the reader.
func (s *QuoteStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("storage: get %s: %w", key, err)
	}
	// GetObject is lazy; Stat forces the first round-trip so missing objects
	// surface here instead of on the first Read.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, "", fmt.Errorf("storage: stat %s: %w", key, err)
	}
	return obj, info.ContentType, nil
}

// Remove deletes a stored quote file. Removing a missing key is not an error.
func (s *QuoteStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}
