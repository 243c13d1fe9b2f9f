package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"

	"github.com/diillson/cloudability-export-go/internal/adapter/driven/cloudability"
	"github.com/diillson/cloudability-export-go/internal/adapter/driven/config"
	"github.com/diillson/cloudability-export-go/internal/adapter/driven/credential"
	"github.com/diillson/cloudability-export-go/internal/adapter/driven/export"
	"github.com/diillson/cloudability-export-go/internal/adapter/driven/storage"
	"github.com/diillson/cloudability-export-go/internal/adapter/driving/cli"
	"github.com/diillson/cloudability-export-go/internal/application/usecase"
	"github.com/diillson/cloudability-export-go/internal/logger"
	"github.com/diillson/cloudability-export-go/pkg/console"
	"github.com/diillson/cloudability-export-go/pkg/version"
)

func main() {
	// A tabela do modo print é o único conteúdo no stdout
	pterm.SetDefaultOutput(os.Stderr)

	log, err := logger.New(os.Stderr, logger.DefaultLevel)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)
	app.SetLogger(log)

	// Inicializa os repositórios
	clock := clockwork.NewRealClock()
	consoleImpl := console.NewConsole()
	credentialRepo := credential.NewCredentialRepository(0, log.Logger)
	billingRepo := cloudability.NewCloudabilityRepository(cloudability.DefaultBaseURL, 0, clock, log.Logger)
	exportRepo := export.NewExportRepository(afero.NewOsFs(), os.Stdout, consoleImpl, log.Logger)
	storageRepo := storage.NewS3Repository(clock, log.Logger)
	configRepo := config.NewConfigRepository()

	// Inicializa o caso de uso
	exportUseCase := usecase.NewExportUseCase(
		credentialRepo,
		billingRepo,
		exportRepo,
		storageRepo,
		configRepo,
		consoleImpl,
		log.Logger,
	)
	app.SetExportUseCase(exportUseCase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Execute(ctx); err != nil {
		pterm.Error.Println(err)
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}
