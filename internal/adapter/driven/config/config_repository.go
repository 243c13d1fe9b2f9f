package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/diillson/cloudability-export-go/internal/domain/repository"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

// Variáveis de ambiente lidas por ApplyEnvOverrides.
const (
	EnvDays            = "CLOUDABILITY_EXPORT_DAYS"
	EnvLogLevel        = "CLOUDABILITY_EXPORT_LOG_LEVEL"
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	lookupEnv func(string) (string, bool)
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{lookupEnv: os.LookupEnv}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: error accessing config file: %w", types.ErrConfig, err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory, not a file", types.ErrConfig, filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading config file: %w", types.ErrConfig, err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("%w: error parsing TOML file: %w", types.ErrConfig, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("%w: error parsing YAML file: %w", types.ErrConfig, err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("%w: error parsing JSON file: %w", types.ErrConfig, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file format: %s", types.ErrConfig, fileExtension)
	}

	return &config, nil
}

// ApplyEnvOverrides aplica as variáveis de ambiente sobre a configuração.
// CLOUDABILITY_EXPORT_* sobrescrevem o arquivo; as chaves AWS só preenchem
// valores ausentes.
func (r *ConfigRepositoryImpl) ApplyEnvOverrides(cfg *types.Config) error {
	if v, ok := r.lookupEnv(EnvDays); ok && strings.TrimSpace(v) != "" {
		days, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number: %w", types.ErrConfig, EnvDays, v, err)
		}
		cfg.Days = days
	}
	if v, ok := r.lookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := r.lookupEnv(EnvAccessKeyID); ok && cfg.Upload.AccessKeyID == "" {
		cfg.Upload.AccessKeyID = v
	}
	if v, ok := r.lookupEnv(EnvSecretAccessKey); ok && cfg.Upload.SecretAccessKey == "" {
		cfg.Upload.SecretAccessKey = v
	}
	return nil
}
