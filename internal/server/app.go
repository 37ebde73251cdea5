// Package server wires configuration, logging, storage and services
// together and runs the gRPC API until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/budgetkeeper/internal/server/grpc"
)

var (
	logOutput io.Writer = os.Stdout

	newRepositoryManager = repomanager.New
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	services gs.Services
}

// NewApp opens the configured storage backend, applies migrations and
// builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSON(logOutput, level)

	repos, err := newRepositoryManager(ctx, repomanager.Options{
		Backend:       c.StorageBackend,
		DatabaseDSN:   c.DatabaseDSN,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	reports := services.NewReportService(repos, logger)

	return &App{
		config: c,
		logger: logger,
		repos:  repos,
		services: gs.Services{
			Reports:      reports,
			Budgets:      services.NewBudgetService(repos, logger),
			Categories:   services.NewCategoryService(repos, logger),
			Transactions: services.NewTransactionService(repos, logger),
			Export:       services.NewExportService(reports, c, logger),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the storage backend within the shutdown timeout.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend)

	app.initSignalHandler(cancelFunc)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services, app.config.SecretKey)
	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", runErr.Error())
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.repos.Close(closeCtx); err != nil {
		app.logger.Error(closeCtx, "storage close failed", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}

	app.logger.Info(closeCtx, "App stopped")
	return runErr
}
