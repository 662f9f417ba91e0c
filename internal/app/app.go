// Package app assembles textkeeper from its configuration: logger, metrics,
// the configured store backend wrapped with instrumentation, and the
// services built on top of it (sessions, imports, the preview server).
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/textkeeper/internal/config"
	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/filex"
	"github.com/dmitrijs2005/textkeeper/internal/imports"
	"github.com/dmitrijs2005/textkeeper/internal/logging"
	"github.com/dmitrijs2005/textkeeper/internal/metrics"
	"github.com/dmitrijs2005/textkeeper/internal/preview"
	"github.com/dmitrijs2005/textkeeper/internal/session"
	"github.com/dmitrijs2005/textkeeper/internal/store"
	"github.com/dmitrijs2005/textkeeper/internal/store/memory"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	metrics *metrics.Metrics
	store   store.Store
	pending *imports.Queue
}

// NewApp opens the configured backend. Logs go to logOut.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logOut, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	m, err := metrics.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	st, err := openStore(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		config:  c,
		logger:  logger,
		metrics: m,
		store:   store.Instrument(st, c.Backend, m, logger),
		pending: &imports.Queue{},
	}, nil
}

func openStore(ctx context.Context, c *config.Config, logger logging.Logger) (store.Store, error) {
	opts := []store.Option{store.WithLogger(logger)}

	switch c.Backend {
	case config.BackendMemory:
		return memory.New(opts...)
	case config.BackendPostgres:
		return store.OpenSQL(ctx, dbx.Postgres, c.DSN, opts...)
	case config.BackendSQLite:
		dsn := c.DSN
		if dsn == "" {
			var err error
			if dsn, err = filex.DefaultDatabasePath(); err != nil {
				return nil, err
			}
		}
		logger.Debug(ctx, "opening sqlite database", "path", dsn)
		return store.OpenSQL(ctx, dbx.SQLite, dsn, opts...)
	}
	return nil, fmt.Errorf("unsupported backend %q", c.Backend)
}

func (app *App) Config() *config.Config    { return app.config }
func (app *App) Logger() logging.Logger    { return app.logger }
func (app *App) Metrics() *metrics.Metrics { return app.metrics }
func (app *App) Store() store.Store        { return app.store }

// Pending is the queue of files waiting to be imported.
func (app *App) Pending() *imports.Queue { return app.pending }

// Importer returns an importer writing through the instrumented store.
func (app *App) Importer() *imports.Importer {
	return imports.NewImporter(app.store, app.logger.With("module", "imports"))
}

// NewSession builds an autosave session for documentID with the configured
// delay. Autosave outcomes are counted in the metrics.
func (app *App) NewSession(documentID string, opts ...session.Option) *session.Session {
	base := []session.Option{
		session.WithDelay(app.config.AutosaveDelay),
		session.WithLogger(app.logger.With("module", "session")),
		session.OnAutosave(app.metrics.AddAutosave),
	}
	return session.New(app.store, documentID, append(base, opts...)...)
}

// PreviewServer returns the preview server bound to the configured address.
func (app *App) PreviewServer() *preview.Server {
	return preview.NewServer(app.config.PreviewAddr, app.store, app.metrics, app.metrics.Handler(), app.logger)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Serve runs the preview server until ctx is cancelled or the process is
// signalled.
func (app *App) Serve(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.PreviewServer().Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()
	wg.Wait()

	return runErr
}

// Close releases the store.
func (app *App) Close() error {
	return app.store.Close()
}
