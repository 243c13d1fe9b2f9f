package repository

import (
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration files.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	ApplyEnvOverrides(cfg *types.Config) error
}
