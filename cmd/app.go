package cmd

import (
	"context"
	"fmt"

	"mod-manager/core/collection"
	"mod-manager/core/config"
	"mod-manager/core/database"
	"mod-manager/core/logger"
	"mod-manager/core/meta"
	"mod-manager/core/mods"
	"mod-manager/core/storage"
	"mod-manager/feature/collections"

	"go.uber.org/zap"
)

// application holds the wired components shared by all commands.
type application struct {
	cfg        *config.Config
	logger     *zap.Logger
	cache      *meta.DefaultCache
	engine     *meta.Engine
	store      *mods.Store
	manager    *collection.Manager
	discovered *mods.DiscoveryReport
}

// bootstrap loads configuration and wires storage, database, package store
// and collection manager. Base data and database are optional: without them
// tables are reported as build warnings and collections live in memory.
func bootstrap(ctx context.Context) (*application, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.Verify(ctx, client, cfg.Storage.Bucket); err != nil {
		logg.Warn("Base game data unavailable", zap.Error(err))
	}
	cache := meta.NewDefaultCache(meta.NewStorageProvider(client, cfg.Storage.Bucket, cfg.Storage.Prefix))
	engine := meta.NewEngine(cache, logg)

	var repo collection.Repository
	if db, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed, collections will not persist", zap.Error(err))
		repo = collection.NewMemoryRepository()
	} else {
		gormRepo := collections.NewRepository(db)
		if err := gormRepo.Migrate(ctx); err != nil {
			return nil, err
		}
		repo = gormRepo
		logg.Info("Connected to collection database", zap.String("driver", cfg.Database.Driver))
	}

	store := mods.NewStore(cfg.Mods, logg)
	report, err := store.Discover(ctx)
	if err != nil {
		return nil, err
	}

	manager := collection.NewManager(cfg.Collections, store, engine, repo, logg)
	if err := manager.Load(ctx); err != nil {
		return nil, err
	}
	store.Subscribe(manager.HandlePackageEvent)

	return &application{
		cfg:        cfg,
		logger:     logg,
		cache:      cache,
		engine:     engine,
		store:      store,
		manager:    manager,
		discovered: report,
	}, nil
}

// rebuildAll builds every collection synchronously. One-shot commands use it
// instead of the background workers.
func (a *application) rebuildAll(ctx context.Context) error {
	for _, name := range a.manager.List() {
		if name == collection.EmptyName {
			continue
		}
		if _, err := a.manager.Rebuild(ctx, name); err != nil {
			return fmt.Errorf("failed to build collection %s: %w", name, err)
		}
	}
	return nil
}
