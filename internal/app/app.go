package app

import (
	"context"
	"fmt"
	"path"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"partobjaverse-viewer/internal/adapters/secondary/archive"
	"partobjaverse-viewer/internal/adapters/secondary/dataset"
	"partobjaverse-viewer/internal/adapters/secondary/gltf"
	"partobjaverse-viewer/internal/adapters/secondary/hub"
	"partobjaverse-viewer/internal/adapters/secondary/objectstore"
	"partobjaverse-viewer/internal/adapters/secondary/postgres"
	"partobjaverse-viewer/internal/adapters/secondary/prometheus"
	"partobjaverse-viewer/internal/adapters/secondary/sqlite"
	"partobjaverse-viewer/internal/config"
	ports "partobjaverse-viewer/internal/core/ports/output"
	"partobjaverse-viewer/internal/core/services"
)

// App holds the wired adapters and services shared by the commands.
type App struct {
	Config      *config.Config
	Repo        ports.CatalogRepository
	Metrics     *prometheus.Recorder
	Store       ports.ObjectStore
	DatasetSvc  *services.DatasetService
	ColorizeSvc *services.ColorizeService
	CatalogSvc  *services.CatalogService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	repo, err := openRepository(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	recorder := prometheus.NewRecorder()
	hubClient := hub.NewHubClient(&cfg.Hub, recorder)

	// Object store (Optional - based on config)
	store, err := objectstore.NewS3Store(ctx, &cfg.ObjectStore)
	if err != nil {
		log.Warnf("object store init failed (continuing with local meshes only): %v", err)
		store, _ = objectstore.NewS3Store(ctx, &config.ObjectStoreConfig{})
	} else if store.IsAvailable() {
		log.WithField("bucket", cfg.ObjectStore.Bucket).Info("object store initialized")
	} else {
		log.Info("object store disabled")
	}

	// Core Services (Application Layer)
	datasetSvc := services.NewDatasetService(
		cfg.Dataset, hubClient, archive.NewZipExtractor(), dataset.NewLabelSetDecoder(), repo, recorder,
	)
	colorizeSvc := services.NewColorizeService(
		services.MeshPaths{
			MeshesDir:     cfg.Dataset.MeshesPath(),
			SemanticGTDir: cfg.Dataset.SemanticGTPath(),
			ColoredDir:    cfg.Dataset.ColoredPath(),
		},
		gltf.NewMeshCodec(), dataset.NewSemanticLabelReader(), repo, store, recorder, cfg.Colorize.Workers,
	)
	catalogSvc := services.NewCatalogService(repo, store, services.URLConfig{
		StaticPrefix: path.Join("/", StaticRoute),
		MeshesDir:    cfg.Dataset.MeshesDir,
		ColoredDir:   cfg.Dataset.ColoredDir,
		PresignTTL:   cfg.ObjectStore.URLTTL,
	})

	return &App{
		Config:      cfg,
		Repo:        repo,
		Metrics:     recorder,
		Store:       store,
		DatasetSvc:  datasetSvc,
		ColorizeSvc: colorizeSvc,
		CatalogSvc:  catalogSvc,
	}, nil
}

// StaticRoute is where the static directory is served.
const StaticRoute = "static"

func (a *App) Close() {
	if err := a.Repo.Close(); err != nil {
		log.WithError(err).Warn("close catalog repository failed")
	}
}

func openRepository(ctx context.Context, cfg *config.DatabaseConfig) (ports.CatalogRepository, error) {
	if cfg.Driver == "sqlite" {
		repo, err := sqlite.NewCatalogRepository(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite catalog: %w", err)
		}
		log.WithField("path", cfg.Path).Info("sqlite catalog opened")
		return repo, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	log.Info("database connection established")
	return postgres.NewCatalogRepository(pool), nil
}

// InitLogger applies the configured level and format to the global logger.
func InitLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
