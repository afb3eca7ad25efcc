// Package bootstrap wires configuration, infrastructure and the sync
// application into a ready-to-use SyncService.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appintegration "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/cache"
	"github.com/erp/erpsync/internal/infrastructure/config"
	"github.com/erp/erpsync/internal/infrastructure/logger"
	"github.com/erp/erpsync/internal/infrastructure/odoo"
	"github.com/erp/erpsync/internal/infrastructure/persistence"
	"github.com/erp/erpsync/internal/infrastructure/storage"
	"github.com/erp/erpsync/internal/infrastructure/telemetry"
)

// App holds the long-lived components of one process
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Telemetry *telemetry.Providers
	Database  *persistence.Database
	Redis     *redis.Client // nil unless sync.run_lock is redis
	Service   *appintegration.SyncService
}

// New builds the App. Telemetry is started first so that database and
// remote calls are traced from the start.
func New(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: baseLogger}

	logCfg := logger.FromSettings(cfg.Log)
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, logCfg.ZapLevel(), baseLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	app.Telemetry = providers
	app.Logger = providers.Logger
	log := app.Logger

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, errors.Join(err, app.Close(ctx))
	}
	app.Database = db

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingFromSettings(cfg.Telemetry), log).RegisterOtelGorm(db.DB); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to register database tracing: %w", err), app.Close(ctx))
	}

	store, err := storage.NewBinaryStore(ctx, &cfg.Storage, log)
	if err != nil {
		return nil, errors.Join(err, app.Close(ctx))
	}

	lock, client, err := NewRunLock(cfg, log)
	if err != nil {
		return nil, errors.Join(err, app.Close(ctx))
	}
	app.Redis = client

	app.Service, err = NewSyncService(SyncServiceDeps{
		DB:        db.DB,
		Connector: odoo.NewConnectorFromConfig(cfg.Remote, log),
		Store:     store,
		Lock:      lock,
		Metrics:   appintegration.NewTelemetryMetrics(providers.Metrics),
		Logger:    log,
		Sync:      cfg.Sync,
	})
	if err != nil {
		return nil, errors.Join(err, app.Close(ctx))
	}
	return app, nil
}

// NewRunLock builds the run guard selected by sync.run_lock. It returns a nil
// lock for "none"; the ledger constraints then detect concurrent runs. The
// Redis client is returned so the caller can close it.
func NewRunLock(cfg *config.Config, log *zap.Logger) (integration.RunLock, *redis.Client, error) {
	switch cfg.Sync.RunLock {
	case config.RunLockMemory:
		return cache.NewInMemoryRunLock(), nil, nil
	case config.RunLockRedis:
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisRunLock(client, log), client, nil
	case config.RunLockNone, "":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown run lock mode %q", cfg.Sync.RunLock)
	}
}

// SyncServiceDeps are the collaborators of the sync service
type SyncServiceDeps struct {
	DB        *gorm.DB
	Connector integration.Connector
	Store     integration.BinaryStore
	Lock      integration.RunLock
	Metrics   appintegration.MetricsRecorder
	Logger    *zap.Logger
	Sync      config.SyncConfig
}

// NewSyncService assembles engines, orchestrator and service over one
// database. The descriptor lists are validated against the local catalog
// before the service is returned.
func NewSyncService(deps SyncServiceDeps) (*appintegration.SyncService, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	scope := persistence.NewGormTransactionScope(deps.DB)
	links := persistence.NewGormRecordLinkRepository(deps.DB)
	images := persistence.NewGormImageLinkRepository(deps.DB)
	local := persistence.NewGormLocalStore(deps.DB)
	companies := persistence.NewGormCompanyRepository(deps.DB)

	orchestrator := appintegration.NewOrchestrator(appintegration.OrchestratorConfig{
		Connector: deps.Connector,
		Catalog:   persistence.LocalCatalog(),
		Batches:   appintegration.DefaultBatches().WithPolicy(integration.UnresolvedPolicy(deps.Sync.UnresolvedPolicy)),
		Inbound:   appintegration.NewInboundEngine(scope, links, log, deps.Metrics),
		Outbound:  appintegration.NewOutboundEngine(scope, links, local, log, deps.Metrics),
		Images:    appintegration.NewImageEngine(scope, links, images, deps.Store, log, deps.Metrics),
		Logger:    log,
		Metrics:   deps.Metrics,
	})
	if err := orchestrator.Validate(); err != nil {
		return nil, err
	}

	var opts []appintegration.SyncServiceOption
	if deps.Lock != nil {
		opts = append(opts, appintegration.WithRunLock(deps.Lock, deps.Sync.LockTTL))
	}
	return appintegration.NewSyncService(companies, orchestrator, log, opts...), nil
}

// Close releases every component that was started
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Database != nil {
		errs = append(errs, a.Database.Close())
	}
	if a.Telemetry != nil {
		errs = append(errs, a.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
