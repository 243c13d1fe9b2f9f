package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/adapter/driven/export"
	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
	"github.com/diillson/cloudability-export-go/pkg/console"
)

type fakeCredentials struct {
	token string
	err   error
	calls int
}

func (f *fakeCredentials) Resolve(context.Context, entity.TokenSource) (string, error) {
	f.calls++
	return f.token, f.err
}

type fakeBilling struct {
	records       []*entity.Record
	measuresCalls int
	fetchCalls    int
	lastRequest   entity.ReportRequest
	lastToken     string
}

var catalogue = entity.Measures{
	{Name: "date", Label: "Date", DataType: "string"},
	{Name: "vendor", Label: "Vendor", DataType: "string"},
	{Name: "unblended_cost", Label: "Cost (Unblended)", DataType: "currency"},
}

func (f *fakeBilling) Measures(context.Context, string) (entity.Measures, error) {
	f.measuresCalls++
	return catalogue, nil
}

func (f *fakeBilling) Fetch(_ context.Context, token string, req entity.ReportRequest) ([]*entity.Record, entity.Window, error) {
	f.fetchCalls++
	f.lastRequest = req
	f.lastToken = token
	return f.records, entity.NewWindow(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), req.Days), nil
}

type fakeStorage struct {
	calls int
	path  string
	spec  entity.UploadSpec
	size  int64
	err   error
}

func (f *fakeStorage) Upload(_ context.Context, localPath string, spec entity.UploadSpec) (string, error) {
	f.calls++
	f.path = localPath
	f.spec = spec
	if info, err := os.Stat(localPath); err == nil {
		f.size = info.Size()
	}
	return spec.Bucket + "/" + filepath.Base(localPath), f.err
}

type fakeConfig struct {
	cfg *types.Config
	err error
}

func (f *fakeConfig) LoadConfigFile(string) (*types.Config, error) { return f.cfg, f.err }

func (f *fakeConfig) ApplyEnvOverrides(cfg *types.Config) error {
	if cfg.Days == 0 {
		cfg.Days = 7
	}
	return nil
}

func costRecords() []*entity.Record {
	return []*entity.Record{
		entity.RecordFromPairs("date", "2024-01-01", "vendor", "AWS", "cost", "12.50"),
		entity.RecordFromPairs("date", "2024-01-02", "vendor", "AWS", "cost", "13.75"),
	}
}

type fixture struct {
	uc      *ExportUseCase
	creds   *fakeCredentials
	billing *fakeBilling
	storage *fakeStorage
	stdout  *bytes.Buffer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		creds:   &fakeCredentials{token: "secret-token"},
		billing: &fakeBilling{records: costRecords()},
		storage: &fakeStorage{},
		stdout:  &bytes.Buffer{},
	}
	con := console.NewConsoleWithWriter(&bytes.Buffer{}, false)
	exportRepo := export.NewExportRepository(afero.NewOsFs(), f.stdout, con, zap.NewNop())
	f.uc = NewExportUseCase(f.creds, f.billing, exportRepo, f.storage, &fakeConfig{cfg: &types.Config{}}, con, zap.NewNop())
	return f
}

func baseArgs(command, filename string) *types.CLIArgs {
	return &types.CLIArgs{
		LogLevel:     "warn",
		TokenCommand: "pass cloudability_secret",
		Days:         7,
		Timeout:      30 * time.Second,
		Dimensions:   []string{"date", "vendor"},
		Metrics:      []string{"unblended_cost"},
		Mappings:     map[string]string{"unblended_cost": "cost"},
		RegionName:   "us-east-1",
		Command:      command,
		Filename:     filename,
	}
}

func TestRun_CSV(t *testing.T) {
	f := setup(t)
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, f.uc.Run(context.Background(), baseArgs("csv", path)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,vendor,cost\n2024-01-01,AWS,12.50\n2024-01-02,AWS,13.75\n", string(data))

	assert.Equal(t, "secret-token", f.billing.lastToken)
	assert.Equal(t, 7, f.billing.lastRequest.Days)
	assert.Equal(t, map[string]string{"unblended_cost": "cost"}, f.billing.lastRequest.Mappings)
	assert.Zero(t, f.storage.calls)
}

func TestRun_Parquet(t *testing.T) {
	f := setup(t)
	path := filepath.Join(t.TempDir(), "report.parquet")
	args := baseArgs("parquet", path)
	args.Compression = "snappy"

	require.NoError(t, f.uc.Run(context.Background(), args))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	tbl, err := pqarrow.ReadTable(context.Background(), file, nil, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer tbl.Release()

	require.Equal(t, "cost", tbl.Schema().Field(2).Name)
	require.Equal(t, arrow.FLOAT64, tbl.Schema().Field(2).Type.ID())
	costs := tbl.Column(2).Data().Chunk(0).(*array.Float64)
	assert.Equal(t, []float64{12.50, 13.75}, costs.Float64Values())
}

func TestRun_Display(t *testing.T) {
	f := setup(t)
	args := baseArgs("print", "")
	args.BucketName = "reports"
	args.AWSAccessKeyID = "AKID"
	args.AWSSecretAccessKey = "secret"

	require.NoError(t, f.uc.Run(context.Background(), args))

	assert.Contains(t, f.stdout.String(), "13.75")
	assert.Zero(t, f.storage.calls, "print mode never uploads")
}

func TestRun_Upload(t *testing.T) {
	f := setup(t)
	path := filepath.Join(t.TempDir(), "report.csv")
	args := baseArgs("csv", path)
	args.BucketName = "reports"
	args.AWSAccessKeyID = "AKID"
	args.AWSSecretAccessKey = "secret"
	args.Key = "exports/report.csv"

	require.NoError(t, f.uc.Run(context.Background(), args))

	require.Equal(t, 1, f.storage.calls)
	assert.Equal(t, path, f.storage.path)
	assert.Equal(t, "exports/report.csv", f.storage.spec.Key)
	assert.Equal(t, "us-east-1", f.storage.spec.Region)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), f.storage.size)
}

func TestRun_UploadFailure(t *testing.T) {
	f := setup(t)
	f.storage.err = errors.Join(types.ErrUpload, errors.New("denied"))
	args := baseArgs("csv", filepath.Join(t.TempDir(), "report.csv"))
	args.BucketName = "reports"
	args.AWSAccessKeyID = "AKID"
	args.AWSSecretAccessKey = "secret"

	err := f.uc.Run(context.Background(), args)
	assert.True(t, errors.Is(err, types.ErrUpload))
}

func TestRun_CredentialFailureSkipsFetch(t *testing.T) {
	f := setup(t)
	f.creds.err = errors.Join(types.ErrCredential, errors.New("exit status 1"))
	path := filepath.Join(t.TempDir(), "report.csv")

	err := f.uc.Run(context.Background(), baseArgs("csv", path))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCredential))
	assert.Zero(t, f.billing.measuresCalls)
	assert.Zero(t, f.billing.fetchCalls)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_UnknownMeasure(t *testing.T) {
	f := setup(t)
	args := baseArgs("print", "")
	args.Metrics = []string{"blended_cost_typo"}

	err := f.uc.Run(context.Background(), args)
	assert.True(t, errors.Is(err, types.ErrFetch))
	assert.Zero(t, f.billing.fetchCalls)
}

func TestRun_InvalidArgs(t *testing.T) {
	cases := map[string]func(a *types.CLIArgs){
		"csv without filename": func(a *types.CLIArgs) { a.Command = "csv"; a.Filename = "" },
		"zero days":            func(a *types.CLIArgs) { a.Days = 0 },
		"no metrics":           func(a *types.CLIArgs) { a.Metrics = nil },
		"bad compression":      func(a *types.CLIArgs) { a.Command = "parquet"; a.Filename = "x"; a.Compression = "lzma" },
		"bucket without keys":  func(a *types.CLIArgs) { a.BucketName = "reports" },
		"bad filter":           func(a *types.CLIArgs) { a.Filters = []string{"vendor AWS"} },
		"bad log level":        func(a *types.CLIArgs) { a.LogLevel = "trace" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := setup(t)
			args := baseArgs("print", "")
			mutate(args)

			err := f.uc.Run(context.Background(), args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidArgs))
			assert.Zero(t, f.creds.calls)
		})
	}
}

func TestBuildReportRequest(t *testing.T) {
	args := baseArgs("print", "")
	args.Dimensions = []string{" date ", "", "Vendor"}
	args.Filters = []string{"vendor==AWS", " "}

	req, err := BuildReportRequest(args)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "Vendor"}, req.Dimensions)
	assert.Equal(t, []entity.Filter{{Field: "vendor", Operator: "==", Value: "AWS"}}, req.Filters)
}

func TestBuildTarget(t *testing.T) {
	assert.Equal(t, entity.DisplayTarget{}, BuildTarget(baseArgs("print", "")))
	assert.Equal(t, entity.CSVTarget{Path: "a.csv"}, BuildTarget(baseArgs("csv", "a.csv")))

	args := baseArgs("parquet", "a.parquet")
	args.Compression = "zstd"
	assert.Equal(t, entity.ParquetTarget{Path: "a.parquet", Compression: "zstd"}, BuildTarget(args))
}

func TestLoadConfig(t *testing.T) {
	f := setup(t)

	cfg, err := f.uc.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Days)
}
