// Package server wires the remote vehicle store: it opens PostgreSQL, runs
// migrations and serves the gRPC API until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vinscanner/internal/logging"
	"github.com/dmitrijs2005/vinscanner/internal/server/config"
	"github.com/dmitrijs2005/vinscanner/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vinscanner/internal/server/services"

	gs "github.com/dmitrijs2005/vinscanner/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	vehicles *services.VehicleService
}

// NewApp connects to the database and applies pending migrations.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	vs := services.NewVehicleService(db, rm)

	return &App{config: c, logger: logger, db: db, vehicles: vs}, nil
}

// Run serves until ctx is done and closes the database afterwards.
func (app *App) Run(ctx context.Context) error {

	app.logger.Info(ctx, "Starting app...")
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.vehicles, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
