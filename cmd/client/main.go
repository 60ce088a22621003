package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/vinscanner/internal/client/acquisition"
	"github.com/dmitrijs2005/vinscanner/internal/client/cli"
	"github.com/dmitrijs2005/vinscanner/internal/client/client"
	"github.com/dmitrijs2005/vinscanner/internal/client/config"
	"github.com/dmitrijs2005/vinscanner/internal/client/connectivity"
	"github.com/dmitrijs2005/vinscanner/internal/client/httpapi"
	"github.com/dmitrijs2005/vinscanner/internal/client/repositories/vins"
	"github.com/dmitrijs2005/vinscanner/internal/client/services"
	"github.com/dmitrijs2005/vinscanner/internal/client/storage"
	"github.com/dmitrijs2005/vinscanner/internal/decoder"
	"github.com/dmitrijs2005/vinscanner/internal/filex"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// The REPL owns stdout; logs go to stderr.
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		logger.Error(ctx, "error preparing data directory", "error", err)
		return err
	}

	db, err := storage.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return err
	}
	defer db.Close()

	queue := vins.NewSQLiteRepository(db)
	identity := services.NewIdentityService(db)

	remote, err := client.NewGRPCClient(cfg.ServerEndpointAddr, identity.AccessToken)
	if err != nil {
		return err
	}
	defer remote.Close()

	engine := services.NewSyncEngine(queue, remote, identity, logger, services.EngineConfig{
		RemoteTimeout:    cfg.RemoteTimeout,
		StatusResetDelay: cfg.StatusResetDelay,
	})
	if err := engine.RefreshPending(ctx); err != nil {
		return err
	}

	monitor := connectivity.NewMonitor(engine, remote, logger, connectivity.Config{
		ProbeInterval: cfg.OnlineCheckInterval,
		ProbeTimeout:  cfg.ProbeTimeout,
		Debounce:      cfg.DebounceWindow,
	})

	submitter := services.NewSubmitService(engine, queue, remote, identity, logger, cfg.RemoteTimeout)

	formats, err := decoder.ParseFormats(cfg.BarcodeFormats)
	if err != nil {
		return err
	}
	dec, err := decoder.NewZXing(formats...)
	if err != nil {
		return err
	}
	defer dec.Close()

	controller := acquisition.NewController(dec, submitter, logger, acquisition.Options{
		MaxPhotoBytes:     cfg.MaxPhotoBytes,
		MaxImageDimension: cfg.MaxImageDimension,
	})

	app := cli.NewApp(cli.Deps{
		Config:     cfg,
		Identity:   identity,
		Sync:       engine,
		Controller: controller,
		Queue:      queue,
		Remote:     remote,
		Logger:     logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		monitor.Run(gctx)
		return nil
	})

	g.Go(func() error {
		engine.RunPeriodic(gctx, cfg.SyncInterval)
		return nil
	})

	if cfg.HTTPAddr != "" {
		api := httpapi.NewServer(engine, submitter, queue, controller, logger)
		g.Go(func() error {
			return api.Run(gctx, cfg.HTTPAddr)
		})
	}

	// The REPL blocks on stdin and cannot be interrupted, so it is not part
	// of the group; leaving it cancels everything else.
	go func() {
		app.Run(gctx)
		cancel()
	}()

	err = g.Wait()
	engine.Wait()
	return err
}
