// Package server initializes and runs the archives server: it opens the
// metadata store, wires the services and serves the HTTP API until the
// process is signaled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Antoney20/archives/internal/logging"
	"github.com/Antoney20/archives/internal/server/config"
	"github.com/Antoney20/archives/internal/server/metrics"
	"github.com/Antoney20/archives/internal/server/services"
	"github.com/Antoney20/archives/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	hs "github.com/Antoney20/archives/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	appService  *services.AppService
	fileService *services.FileService
	registry    *prometheus.Registry
}

// NewApp opens the database and wires the services. Logs go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSONLogger(w, c.LogLevel)

	db, m, err := openDB(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.NewPrometheusObserver("archives", registry)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	as := services.NewAppService(db, m, logger)
	fs := services.NewFileService(db, m, as, services.FileServiceOptions{
		Disk:         storage.NewDisk(c.StorageRoot),
		Origins:      services.NewOriginPolicy(c.AllowedOrigins),
		BaseMediaURL: c.BaseMediaURL,
		Observer:     observer,
	}, logger)

	return &App{config: c, logger: logger, db: db, appService: as, fileService: fs, registry: registry}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpServer() *hs.Server {
	return hs.NewServer(hs.Options{
		Addr:                  app.config.EndpointAddrHTTP,
		SecretKey:             app.config.SecretKey,
		MaxAdminTokenLifetime: app.config.AdminTokenValidityDuration,
		AllowedOrigins:        app.config.AllowedOrigins,
		MaxUploadBytes:        app.config.MaxUploadBytes,
		MediaRoot:             app.config.StorageRoot,
		ServeMedia:            app.config.ServeMedia,
		ShutdownTimeout:       app.config.ShutdownTimeout,
		Gatherer:              app.registry,
	}, app.logger, app.appService, app.fileService, app.db)
}

// Run serves until ctx is canceled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver, "storage_root", app.config.StorageRoot)

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.httpServer().Run(ctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, err.Error())
	}
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
