package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/brainforge-backend/internal/config"
	"github.com/yungbote/brainforge-backend/internal/data/db"
	"github.com/yungbote/brainforge-backend/internal/data/repos"
	apphttp "github.com/yungbote/brainforge-backend/internal/http"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Game     config.GameConfig
	Repos    repos.Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Server   *apphttp.Server

	dbService     *db.DatabaseService
	shutdownTrace func(context.Context) error
	cancel        context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects and migrates the configured database.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.DatabaseService, error) {
	dbs, err := db.NewDatabaseService(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	return dbs, nil
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	gameCfg, err := config.LoadGame(cfg.ExercisesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load game config: %w", err)
	}

	shutdownTrace := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	metrics := observability.Init(log)

	dbs, err := OpenDatabase(log, cfg)
	if err != nil {
		return nil, err
	}
	theDB := dbs.DB()

	clients, err := wireClients(ctx, log)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}

	reposet := repos.New(theDB, log)
	serviceset := wireServices(theDB, log, cfg, gameCfg, reposet, clients, metrics)
	server := wireServer(log, cfg, serviceset, metrics, dbs.Ping)

	return &App{
		Log:           log,
		DB:            theDB,
		Cfg:           cfg,
		Game:          gameCfg,
		Repos:         reposet,
		Clients:       clients,
		Services:      serviceset,
		Metrics:       metrics,
		Server:        server,
		dbService:     dbs,
		shutdownTrace: shutdownTrace,
	}, nil
}

// Start launches the metrics endpoint and background collectors.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Serve(ctx, a.Cfg.HTTPAddr, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.shutdownTrace != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.shutdownTrace(ctx); err != nil {
			a.Log.Warn("Trace provider shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
