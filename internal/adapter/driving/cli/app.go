package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/diillson/cloudability-export-go/internal/application/usecase"
	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/logger"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
	"github.com/diillson/cloudability-export-go/pkg/version"
)

// Valores padrão das flags.
const (
	DefaultTokenCommand = "pass cloudability_secret"
	DefaultDays         = 7
	DefaultRegion       = "us-east-1"
)

var (
	defaultDimensions = []string{"date", "vendor"}
	defaultMetrics    = []string{"unblended_cost"}
)

type exportRunner interface {
	LoadConfig(path string) (*types.Config, error)
	Run(ctx context.Context, args *types.CLIArgs) error
}

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd     *cobra.Command
	runner      exportRunner
	logger      *logger.Logger
	version     string
	interactive bool
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version:     versionStr,
		interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	rootCmd := &cobra.Command{
		Use:           "cloudability-export",
		Short:         "Export Cloudability cost reports to the terminal, CSV or Parquet",
		Version:       version.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "Cloudability Export version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.String("log-level", logger.DefaultLevel, "Diagnostics log level: debug, info, warn, error")

	flags.String("token", "", "Cloudability API token")
	flags.String("token-env-var", "", "Read the Cloudability API token from this environment variable")
	flags.String("token-command", DefaultTokenCommand, "Command printing the Cloudability API token on stdout")
	rootCmd.MarkFlagsMutuallyExclusive("token", "token-env-var", "token-command")

	flags.IntP("days", "d", DefaultDays, "Number of days to look back")
	flags.Duration("timeout", 30*time.Second, "Timeout for the Cloudability API calls")
	flags.StringSlice("dimensions", defaultDimensions, "Report dimensions, by name or label")
	flags.StringSlice("metrics", defaultMetrics, "Report metrics, by name or label")
	flags.StringArray("filter", nil, "Report filter such as vendor==AWS (repeatable)")
	flags.StringToString("mapping", map[string]string{"unblended_cost": "cost"}, "Rename result fields, e.g. unblended_cost=cost")

	flags.String("bucket-name", "", "Upload the exported file to this S3 bucket")
	flags.String("aws-access-key-id", "", "AWS access key id used for the upload (default $AWS_ACCESS_KEY_ID)")
	flags.String("aws-secret-access-key", "", "AWS secret access key used for the upload (default $AWS_SECRET_ACCESS_KEY)")
	flags.String("region-name", DefaultRegion, "AWS region of the bucket")
	flags.String("s3-endpoint", "", "Custom S3 compatible endpoint")
	flags.String("key", "", "Object key (default: <timestamp>-<file name>)")

	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the report as a table",
		Args:  cobra.NoArgs,
		RunE:  app.runCommand(entity.TargetDisplay),
	}

	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the report to a CSV file",
		Args:  cobra.NoArgs,
		RunE:  app.runCommand(entity.TargetCSV),
	}
	csvCmd.Flags().StringP("filename", "f", "", "Output file")
	_ = csvCmd.MarkFlagRequired("filename")

	parquetCmd := &cobra.Command{
		Use:   "parquet",
		Short: "Write the report to a Parquet file",
		Args:  cobra.NoArgs,
		RunE:  app.runCommand(entity.TargetParquet),
	}
	parquetCmd.Flags().StringP("filename", "f", "", "Output file")
	parquetCmd.Flags().String("compression", "none", "Compression codec: none, snappy, gzip, brotli, zstd")
	_ = parquetCmd.MarkFlagRequired("filename")

	rootCmd.AddCommand(printCmd, csvCmd, parquetCmd)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args[1:].
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// SetExportUseCase sets the export use case for the CLI app.
func (app *CLIApp) SetExportUseCase(useCase *usecase.ExportUseCase) {
	app.runner = useCase
}

// SetLogger sets the logger whose level follows --log-level.
func (app *CLIApp) SetLogger(l *logger.Logger) {
	app.logger = l
}

// runCommand é o ponto de entrada de cada subcomando.
func (app *CLIApp) runCommand(kind entity.TargetKind) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		configFile, _ := cmd.Flags().GetString("config-file")
		cfg, err := app.runner.LoadConfig(configFile)
		if err != nil {
			return err
		}
		if err := applyConfig(cmd.Flags(), cfg); err != nil {
			return fmt.Errorf("%w: %w", types.ErrConfig, err)
		}

		cliArgs, err := parseArgs(cmd.Flags(), kind)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrInvalidArgs, err)
		}
		cliArgs.ConfigFile = configFile
		if cfg.Upload.AccessKeyID != "" && cliArgs.AWSAccessKeyID == "" {
			cliArgs.AWSAccessKeyID = cfg.Upload.AccessKeyID
		}
		if cfg.Upload.SecretAccessKey != "" && cliArgs.AWSSecretAccessKey == "" {
			cliArgs.AWSSecretAccessKey = cfg.Upload.SecretAccessKey
		}

		if app.logger != nil {
			if err := app.logger.SetLevel(cliArgs.LogLevel); err != nil {
				return fmt.Errorf("%w: %w", types.ErrInvalidArgs, err)
			}
		}

		if app.interactive && kind != entity.TargetDisplay {
			displayWelcomeBanner(app.version)
		}

		return app.runner.Run(cmd.Context(), cliArgs)
	}
}

// parseArgs lê as flags já mescladas com o arquivo de configuração.
func parseArgs(flags *pflag.FlagSet, kind entity.TargetKind) (*types.CLIArgs, error) {
	var err error
	args := &types.CLIArgs{Command: string(kind)}

	get := func(name string, dst *string) {
		if err == nil {
			*dst, err = flags.GetString(name)
		}
	}
	get("log-level", &args.LogLevel)
	get("token", &args.Token)
	get("token-env-var", &args.TokenEnvVar)
	get("token-command", &args.TokenCommand)
	get("bucket-name", &args.BucketName)
	get("aws-access-key-id", &args.AWSAccessKeyID)
	get("aws-secret-access-key", &args.AWSSecretAccessKey)
	get("region-name", &args.RegionName)
	get("s3-endpoint", &args.S3Endpoint)
	get("key", &args.Key)
	if err != nil {
		return nil, err
	}

	if args.Days, err = flags.GetInt("days"); err != nil {
		return nil, err
	}
	if args.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if args.Dimensions, err = flags.GetStringSlice("dimensions"); err != nil {
		return nil, err
	}
	if args.Metrics, err = flags.GetStringSlice("metrics"); err != nil {
		return nil, err
	}
	if args.Filters, err = flags.GetStringArray("filter"); err != nil {
		return nil, err
	}
	if args.Mappings, err = flags.GetStringToString("mapping"); err != nil {
		return nil, err
	}

	// Only defined on csv and parquet.
	if flags.Lookup("filename") != nil {
		args.Filename, _ = flags.GetString("filename")
	}
	if flags.Lookup("compression") != nil {
		args.Compression, _ = flags.GetString("compression")
	}

	return args, nil
}

// applyConfig copia os valores do arquivo para as flags que não foram
// informadas na linha de comando.
func applyConfig(flags *pflag.FlagSet, cfg *types.Config) error {
	set := func(name, value string) error {
		if value == "" || flags.Changed(name) {
			return nil
		}
		return flags.Set(name, value)
	}
	replace := func(name string, values []string) error {
		if len(values) == 0 || flags.Changed(name) {
			return nil
		}
		slice, ok := flags.Lookup(name).Value.(pflag.SliceValue)
		if !ok {
			return fmt.Errorf("flag --%s is not a list", name)
		}
		return slice.Replace(values)
	}

	if cfg.Days != 0 {
		if err := set("days", strconv.Itoa(cfg.Days)); err != nil {
			return err
		}
	}
	if err := set("log-level", cfg.LogLevel); err != nil {
		return err
	}
	if err := set("timeout", cfg.Timeout); err != nil {
		return err
	}

	// A token source given on the command line wins over any from the file.
	if !flags.Changed("token") && !flags.Changed("token-env-var") && !flags.Changed("token-command") {
		if err := set("token-env-var", cfg.TokenEnvVar); err != nil {
			return err
		}
		if err := set("token-command", cfg.TokenCommand); err != nil {
			return err
		}
	}

	if err := replace("dimensions", cfg.Report.Dimensions); err != nil {
		return err
	}
	if err := replace("metrics", cfg.Report.Metrics); err != nil {
		return err
	}
	if len(cfg.Report.Filters) > 0 {
		filters := make([]string, 0, len(cfg.Report.Filters))
		for _, f := range cfg.Report.Filters {
			filters = append(filters, entity.Filter{Field: f.Field, Operator: f.Operator, Value: f.Value}.String())
		}
		if err := replace("filter", filters); err != nil {
			return err
		}
	}
	if len(cfg.Report.Mappings) > 0 && !flags.Changed("mapping") {
		keys := make([]string, 0, len(cfg.Report.Mappings))
		for k := range cfg.Report.Mappings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		// The first Set replaces the defaults, later ones merge.
		for _, k := range keys {
			if err := flags.Set("mapping", k+"="+cfg.Report.Mappings[k]); err != nil {
				return err
			}
		}
	}

	if err := set("bucket-name", cfg.Upload.BucketName); err != nil {
		return err
	}
	if err := set("region-name", cfg.Upload.RegionName); err != nil {
		return err
	}
	if err := set("s3-endpoint", cfg.Upload.Endpoint); err != nil {
		return err
	}
	return set("key", cfg.Upload.Key)
}
