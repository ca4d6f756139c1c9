package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/clipzone/clipzone/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage provides object storage for clip media. The durable media
// reference recorded on a clip is the object key; playback goes through
// presigned URLs.
type Storage struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

// New creates a new storage client and ensures the media bucket exists
func New(cfg config.StorageConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &Storage{
		client:    client,
		bucket:    cfg.BucketName,
		urlExpiry: expiry,
	}, nil
}

// UploadClip stores clip media under the given object key
func (s *Storage) UploadClip(ctx context.Context, objectName string, reader io.Reader, size int64, filename string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentTypeFor(filename),
	})
	if err != nil {
		return fmt.Errorf("failed to upload clip media: %w", err)
	}

	return nil
}

// PlaybackURL returns a presigned URL for clip media
func (s *Storage) PlaybackURL(ctx context.Context, objectName string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate playback URL: %w", err)
	}

	return url.String(), nil
}

// Delete removes clip media from storage
func (s *Storage) Delete(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete clip media: %w", err)
	}

	return nil
}

// contentTypeFor returns the content type based on file extension
func contentTypeFor(filename string) string {
	switch filepath.Ext(filename) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
