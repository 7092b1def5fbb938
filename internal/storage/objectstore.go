package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path"
	"strings"
	"time"

	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the S3-compatible attachment store. One instance is
// constructed at process start and handed to whichever handler uploads or
// downloads; there is no package-global client.
type ObjectStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// New connects to the configured S3-compatible endpoint.
func New(cfg *config.Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &ObjectStore{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: cfg.S3Endpoint,
		useSSL:   cfg.S3UseSSL,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put streams one uploaded file into the bucket and returns its URL. The
// object key follows the fieldname-timestamp-random.ext naming scheme, so
// keys stay unique without coordination.
func (s *ObjectStore) Put(ctx context.Context, fieldName, originalName, contentType string, reader io.Reader, size int64) (string, error) {
	key := ObjectKey(fieldName, originalName)

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", key, err)
	}

	return s.ObjectURL(key), nil
}

// Get streams an object out of the bucket.
func (s *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", key, err)
	}
	// GetObject is lazy; force the first read so a missing key surfaces here
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to fetch object %s: %w", key, err)
	}
	return obj, nil
}

// Ping verifies the endpoint is reachable and the bucket is visible.
func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// ObjectURL returns the public URL of a stored object.
func (s *ObjectStore) ObjectURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}

// KeyFromURL extracts the object key from a stored attachment URL.
func KeyFromURL(url string) string {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return url
	}
	return url[idx+1:]
}

// ObjectKey builds a unique object key from the upload field name and the
// original filename's extension.
func ObjectKey(fieldName, originalName string) string {
	suffix := rand.Int63n(1e9)
	return fmt.Sprintf("%s-%d-%d%s", fieldName, time.Now().UnixMilli(), suffix, path.Ext(originalName))
}
