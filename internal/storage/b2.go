package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

// B2Uploader stores documents in a Backblaze B2 bucket. Writing an
// existing key replaces the visible version, so re-uploads overwrite.
type B2Uploader struct {
	client *b2.Client
	bucket *b2.Bucket
	prefix string
	logger logger.Logger
}

func NewB2Uploader(ctx context.Context, accountID, appKey, bucketName, prefix string, log logger.Logger) (*B2Uploader, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}
	return &B2Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"component": "b2-storage", "bucket": bucketName}),
	}, nil
}

func (s *B2Uploader) UploadSingleFile(ctx context.Context, email string, slot models.Slot, submissionID string, file *models.File) (string, error) {
	key := ObjectKey(s.prefix, email, slot, submissionID)

	w := s.bucket.Object(key).NewWriter(ctx)
	if file.ContentType != "" {
		w = w.WithAttrs(&b2.Attrs{ContentType: file.ContentType})
	}
	if _, err := io.Copy(w, bytes.NewReader(file.Data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for %s: %w", key, err)
	}

	s.logger.Debug("document stored", map[string]interface{}{"key": key, "bytes": len(file.Data)})
	return s.publicURL(key), nil
}

func (s *B2Uploader) publicURL(key string) string {
	return fmt.Sprintf("%s/file/%s/%s", s.bucket.BaseURL(), s.bucket.Name(), key)
}
