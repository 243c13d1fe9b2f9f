package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/domain/repository"
	"github.com/diillson/cloudability-export-go/internal/domain/service"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
	"github.com/diillson/cloudability-export-go/internal/shared/validator"
)

// ExportUseCase runs the export pipeline: token, report, table, sink, upload.
type ExportUseCase struct {
	credentialRepo repository.CredentialRepository
	billingRepo    repository.BillingRepository
	exportRepo     repository.ExportRepository
	storageRepo    repository.StorageRepository
	configRepo     repository.ConfigRepository
	console        types.ConsoleInterface
	logger         *zap.Logger
}

// NewExportUseCase creates a new export use case.
func NewExportUseCase(
	credentialRepo repository.CredentialRepository,
	billingRepo repository.BillingRepository,
	exportRepo repository.ExportRepository,
	storageRepo repository.StorageRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
	logger *zap.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		credentialRepo: credentialRepo,
		billingRepo:    billingRepo,
		exportRepo:     exportRepo,
		storageRepo:    storageRepo,
		configRepo:     configRepo,
		console:        console,
		logger:         logger,
	}
}

// LoadConfig lê o arquivo de configuração (quando informado) e aplica as
// variáveis de ambiente por cima.
func (uc *ExportUseCase) LoadConfig(path string) (*types.Config, error) {
	cfg := &types.Config{}
	if path != "" {
		loaded, err := uc.configRepo.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := uc.configRepo.ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes one export. Any stage failure aborts the run and is returned
// wrapped in its category error.
func (uc *ExportUseCase) Run(ctx context.Context, args *types.CLIArgs) error {
	if err := validator.Validate(args); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidArgs, err)
	}

	target := BuildTarget(args)
	upload, err := BuildUploadSpec(args)
	if err != nil {
		return err
	}
	request, err := BuildReportRequest(args)
	if err != nil {
		return err
	}

	log := uc.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("export started",
		zap.String("target", string(target.Kind())),
		zap.Int("days", request.Days),
		zap.Bool("upload", upload != nil))

	if upload != nil && target.Kind() == entity.TargetDisplay {
		uc.console.LogWarning("Upload to %s skipped: nothing is written to disk in print mode", upload.Bucket)
		upload = nil
	}

	table, err := uc.fetchTable(ctx, args, request, log)
	if err != nil {
		return err
	}

	path, err := target.Dispatch(uc.exportRepo, table)
	if err != nil {
		return err
	}
	if path == "" {
		log.Info("export finished", zap.Int("rows", table.Len()))
		return nil
	}
	uc.console.LogSuccess("Exported %d rows to %s", table.Len(), path)

	if upload != nil {
		status := uc.console.Status(fmt.Sprintf("Uploading %s to %s...", path, upload.Bucket))
		location, err := uc.storageRepo.Upload(ctx, path, *upload)
		status.Stop()
		if err != nil {
			return err
		}
		uc.console.LogSuccess("Uploaded to s3://%s", location)
	}

	log.Info("export finished", zap.Int("rows", table.Len()), zap.String("path", path))
	return nil
}

// fetchTable resolve o token, baixa o relatório e normaliza os registros.
func (uc *ExportUseCase) fetchTable(ctx context.Context, args *types.CLIArgs, request entity.ReportRequest, log *zap.Logger) (*entity.Table, error) {
	status := uc.console.Status("Resolving Cloudability token...")
	defer status.Stop()

	token, err := uc.credentialRepo.Resolve(ctx, entity.TokenSource{
		Token:   args.Token,
		EnvVar:  args.TokenEnvVar,
		Command: args.TokenCommand,
	})
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, args.Timeout)
	defer cancel()

	status.Update("Loading Cloudability measures...")
	measures, err := uc.billingRepo.Measures(fetchCtx, token)
	if err != nil {
		return nil, err
	}
	resolved, err := request.Resolve(measures)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrFetch, err)
	}

	status.Update(fmt.Sprintf("Fetching cost report for the last %d days...", resolved.Days))
	records, window, err := uc.billingRepo.Fetch(fetchCtx, token, resolved)
	if err != nil {
		return nil, err
	}
	log.Info("cost report fetched",
		zap.String("start_date", window.StartDate()),
		zap.String("end_date", window.EndDate()),
		zap.Int("records", len(records)))

	table, warnings := service.Normalize(records, resolved.Columns())
	for _, w := range warnings {
		log.Warn("table normalization", zap.Error(w))
		uc.console.LogWarning("%s", w)
	}
	return table, nil
}

// BuildTarget maps the selected subcommand to its export target.
func BuildTarget(args *types.CLIArgs) entity.ExportTarget {
	switch entity.TargetKind(args.Command) {
	case entity.TargetCSV:
		return entity.CSVTarget{Path: args.Filename}
	case entity.TargetParquet:
		return entity.ParquetTarget{Path: args.Filename, Compression: args.Compression}
	default:
		return entity.DisplayTarget{}
	}
}

// BuildUploadSpec returns nil when no bucket was given.
func BuildUploadSpec(args *types.CLIArgs) (*entity.UploadSpec, error) {
	if args.BucketName == "" {
		return nil, nil
	}
	spec := &entity.UploadSpec{
		Bucket:          args.BucketName,
		Key:             args.Key,
		AccessKeyID:     args.AWSAccessKeyID,
		SecretAccessKey: args.AWSSecretAccessKey,
		Region:          args.RegionName,
		Endpoint:        args.S3Endpoint,
	}
	if err := validator.Validate(spec); err != nil {
		return nil, fmt.Errorf("%w: upload: %w", types.ErrInvalidArgs, err)
	}
	return spec, nil
}

// BuildReportRequest parses the report flags into a request.
func BuildReportRequest(args *types.CLIArgs) (entity.ReportRequest, error) {
	request := entity.ReportRequest{
		Dimensions: trimAll(args.Dimensions),
		Metrics:    trimAll(args.Metrics),
		Mappings:   map[string]string{},
		Days:       args.Days,
	}
	for k, v := range args.Mappings {
		request.Mappings[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	for _, expr := range args.Filters {
		if strings.TrimSpace(expr) == "" {
			continue
		}
		filter, err := entity.ParseFilter(expr)
		if err != nil {
			return entity.ReportRequest{}, fmt.Errorf("%w: %w", types.ErrInvalidArgs, err)
		}
		request.Filters = append(request.Filters, filter)
	}
	return request, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
