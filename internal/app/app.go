// Package app initializes and holds long-lived application services, acting
// as a dependency injection container. It is built once at startup and
// passed to the components that need it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pageharvest/pageharvest/internal/archive"
	archivegcs "github.com/pageharvest/pageharvest/internal/archive/gcs"
	archivemem "github.com/pageharvest/pageharvest/internal/archive/memory"
	"github.com/pageharvest/pageharvest/internal/clock/system"
	"github.com/pageharvest/pageharvest/internal/config"
	"github.com/pageharvest/pageharvest/internal/logging"
	"github.com/pageharvest/pageharvest/internal/publisher"
	pubmem "github.com/pageharvest/pageharvest/internal/publisher/memory"
	pubgcp "github.com/pageharvest/pageharvest/internal/publisher/pubsub"
	"github.com/pageharvest/pageharvest/internal/scraper"
	storemem "github.com/pageharvest/pageharvest/internal/store/memory"
	storepg "github.com/pageharvest/pageharvest/internal/store/postgres"
)

// App holds all the shared, long-lived services for the application.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	pipeline *scraper.Pipeline
	query    *scraper.Query
	closers  []func()
}

// New creates and initializes an App from configuration. It is the central
// point for service initialization and fails fast if any critical service
// cannot be built.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	logger.Info("initializing application services")

	a := &App{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	store, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}
	events, err := a.buildPublisher(ctx)
	if err != nil {
		return nil, err
	}
	snapshots, err := a.buildArchive(ctx)
	if err != nil {
		return nil, err
	}

	fetcher := scraper.NewCollyFetcher(cfg.FetchTimeout(), cfg.Fetch.UserAgent, logger)
	a.pipeline = scraper.NewPipeline(fetcher, store, system.Clock{}, events, snapshots, logger)
	a.query = scraper.NewQuery(store, logger)
	return a, nil
}

func (a *App) buildStore(ctx context.Context) (scraper.ItemStore, error) {
	switch a.cfg.Store.Provider {
	case "postgres":
		a.logger.Info("connecting to postgres", zap.String("table", a.cfg.Store.Table))
		pg, err := storepg.New(ctx, storepg.Config{
			DSN:             a.cfg.Store.DSN,
			Table:           a.cfg.Store.Table,
			MaxConns:        int32(a.cfg.Store.MaxConns),
			MinConns:        int32(a.cfg.Store.MinConns),
			MaxConnLifetime: time.Duration(a.cfg.Store.MaxConnLifeMins) * time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		return pg, nil
	case "memory":
		a.logger.Info("using in-memory item store; items will not survive restarts")
		return storemem.New(), nil
	default:
		return nil, fmt.Errorf("unknown store provider: %s", a.cfg.Store.Provider)
	}
}

func (a *App) buildPublisher(ctx context.Context) (publisher.Publisher, error) {
	switch a.cfg.Publisher.Provider {
	case "pubsub":
		a.logger.Info("connecting to pubsub", zap.String("topic", a.cfg.Publisher.Topic))
		p, err := pubgcp.New(ctx, a.cfg.Publisher.ProjectID, a.cfg.Publisher.Topic)
		if err != nil {
			return nil, fmt.Errorf("initialize publisher: %w", err)
		}
		a.closers = append(a.closers, func() {
			if cerr := p.Close(); cerr != nil {
				a.logger.Warn("close publisher failed", zap.Error(cerr))
			}
		})
		return p, nil
	case "memory":
		return pubmem.New(), nil
	case "", "noop":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown publisher provider: %s", a.cfg.Publisher.Provider)
	}
}

func (a *App) buildArchive(ctx context.Context) (archive.Provider, error) {
	switch a.cfg.Archive.Provider {
	case "gcs":
		a.logger.Info("archiving page snapshots to gcs", zap.String("bucket", a.cfg.Archive.Bucket))
		b, err := archivegcs.New(ctx, a.cfg.Archive.Bucket, a.cfg.Archive.Prefix)
		if err != nil {
			return nil, fmt.Errorf("initialize archive: %w", err)
		}
		a.closers = append(a.closers, func() {
			if cerr := b.Close(); cerr != nil {
				a.logger.Warn("close archive failed", zap.Error(cerr))
			}
		})
		return b, nil
	case "memory":
		return archivemem.New(), nil
	case "", "noop":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown archive provider: %s", a.cfg.Archive.Provider)
	}
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger { return a.logger }

// Pipeline returns the scrape orchestrator.
func (a *App) Pipeline() *scraper.Pipeline { return a.pipeline }

// Query returns the read service.
func (a *App) Query() *scraper.Query { return a.query }

// Close shuts down services in reverse initialization order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
