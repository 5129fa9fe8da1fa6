// Package storage holds the document storage adapters used by the
// submission builder.
package storage

import (
	"context"
	"fmt"
	"strings"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

// ObjectKey is where a slot's document is stored:
// <email>-<submissionId>/<slot>. Keys are namespaced by submission id so
// a retried submission never reuses an earlier attempt's objects.
func ObjectKey(prefix, email string, slot models.Slot, submissionID string) string {
	key := fmt.Sprintf("%s-%s/%s", email, submissionID, slot)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

// Uploader is implemented by every storage strategy.
type Uploader interface {
	UploadSingleFile(ctx context.Context, email string, slot models.Slot, submissionID string, file *models.File) (string, error)
}

// New builds the uploader selected by cfg.Strategy.
func New(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Uploader, error) {
	switch cfg.Strategy {
	case "b2":
		return NewB2Uploader(ctx, cfg.B2.AccountID, cfg.B2.AppKey, cfg.B2.Bucket, cfg.B2.Prefix, log)
	case "mockup", "":
		return NewMockUploader(), nil
	default:
		return nil, fmt.Errorf("unknown storage strategy %q", cfg.Strategy)
	}
}
