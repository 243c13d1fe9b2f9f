package repository

import (
	"context"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
)

// StorageRepository pushes a produced file to object storage.
type StorageRepository interface {
	// Upload sends the file at localPath and returns the "bucket/key" location.
	Upload(ctx context.Context, localPath string, spec entity.UploadSpec) (string, error)
}
