package repository

import (
	"context"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
)

// CredentialRepository resolves the Cloudability API token.
type CredentialRepository interface {
	Resolve(ctx context.Context, source entity.TokenSource) (string, error)
}
