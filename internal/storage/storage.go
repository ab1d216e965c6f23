// Package storage uploads listing media to S3-compatible blob storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MaxFileSize is the upload limit in bytes.
const MaxFileSize = 5 << 20

var allowedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// IsAllowedImageType reports whether contentType may be uploaded.
func IsAllowedImageType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return allowedTypes[strings.ToLower(strings.TrimSpace(mediaType))]
}

// PrefixFor maps an upload kind to its key prefix.
func PrefixFor(kind string) string {
	switch kind {
	case "icon":
		return "icons"
	case "thumbnail":
		return "thumbnails"
	default:
		return "uploads"
	}
}

// ObjectKey builds "<prefix>/<unix-ms>-<random>.<ext>" for an uploaded file.
func ObjectKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s.%s", prefix, now.UnixMilli(), random, ext)
}

// Config holds S3 connection settings.
type Config struct {
	Endpoint        string // host[:port], a scheme is stripped
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	PublicURL       string // base for returned URLs, defaults to endpoint/bucket
}

// S3Storage stores objects in one bucket.
type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewS3Storage creates a client and makes sure the bucket exists.
func NewS3Storage(ctx context.Context, cfg Config, logger *zap.Logger) (*S3Storage, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint, useSSL = rest, true
	} else if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint, useSSL = rest, false
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created storage bucket", zap.String("bucket", cfg.Bucket))
	}

	baseURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: baseURL, logger: logger}, nil
}

// Upload stores r under key and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Warn("object upload failed",
			zap.String("upstream", "blob_storage"),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Info("object uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return s.baseURL + "/" + key, nil
}
