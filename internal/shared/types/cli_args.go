package types

import "time"

// CLIArgs represents the command-line arguments, after the config file and
// environment overrides have been applied.
type CLIArgs struct {
	ConfigFile string
	LogLevel   string `validate:"oneof=debug info warn error"`

	Token        string
	TokenEnvVar  string
	TokenCommand string

	Days    int           `validate:"min=1"`
	Timeout time.Duration `validate:"min=1s"`

	Dimensions []string
	Metrics    []string `validate:"min=1"`
	Filters    []string
	Mappings   map[string]string

	BucketName         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	RegionName         string
	S3Endpoint         string
	Key                string

	Command     string `validate:"oneof=print csv parquet"`
	Filename    string `validate:"required_unless=Command print"`
	Compression string `validate:"omitempty,oneof=none snappy gzip brotli zstd"`
}
