package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Days         int          `json:"days" yaml:"days" toml:"days"`
	LogLevel     string       `json:"log_level" yaml:"log_level" toml:"log_level"`
	Timeout      string       `json:"timeout" yaml:"timeout" toml:"timeout"`
	TokenEnvVar  string       `json:"token_env_var" yaml:"token_env_var" toml:"token_env_var"`
	TokenCommand string       `json:"token_command" yaml:"token_command" toml:"token_command"`
	Report       ReportConfig `json:"report" yaml:"report" toml:"report"`
	Upload       UploadConfig `json:"upload" yaml:"upload" toml:"upload"`
}

// ReportConfig define as dimensões, métricas e filtros do relatório.
type ReportConfig struct {
	Dimensions []string          `json:"dimensions" yaml:"dimensions" toml:"dimensions"`
	Metrics    []string          `json:"metrics" yaml:"metrics" toml:"metrics"`
	Mappings   map[string]string `json:"mappings" yaml:"mappings" toml:"mappings"`
	Filters    []FilterConfig    `json:"filters" yaml:"filters" toml:"filters"`
}

// FilterConfig is one report filter as written in the config file.
type FilterConfig struct {
	Field    string `json:"field" yaml:"field" toml:"field"`
	Operator string `json:"operator" yaml:"operator" toml:"operator"`
	Value    string `json:"value" yaml:"value" toml:"value"`
}

// UploadConfig holds the non-secret upload settings. Keys come from flags or
// from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY.
type UploadConfig struct {
	BucketName      string `json:"bucket_name" yaml:"bucket_name" toml:"bucket_name"`
	RegionName      string `json:"region_name" yaml:"region_name" toml:"region_name"`
	Endpoint        string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	Key             string `json:"key" yaml:"key" toml:"key"`
	AccessKeyID     string `json:"-" yaml:"-" toml:"-"`
	SecretAccessKey string `json:"-" yaml:"-" toml:"-"`
}
