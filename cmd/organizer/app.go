package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"go-task-organizer/database/migrations"
	"go-task-organizer/internal/config"
	"go-task-organizer/internal/database"
	"go-task-organizer/internal/graph"
	"go-task-organizer/internal/logging"
	"go-task-organizer/internal/organizer"
	"go-task-organizer/internal/store"
)

// app holds the loaded organizer and the backend it persists to.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *store.Store
	org    *organizer.Organizer
	close  func() error
}

func loadConfig() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logging.New(cfg.Log, os.Stderr), nil
}

// openPersister connects the configured backend and brings its schema up
// to date.
func openPersister(ctx context.Context, cfg *config.Config) (store.Persister, func() error, error) {
	switch cfg.Store.Backend {
	case "neo4j":
		driver, err := graph.Connect(ctx, cfg.Neo4j)
		if err != nil {
			return nil, nil, err
		}
		p := graph.NewPersister(driver)
		if err := p.Migrate(ctx); err != nil {
			driver.Close(ctx)
			return nil, nil, fmt.Errorf("failed to migrate graph: %w", err)
		}
		return p, func() error { return driver.Close(context.Background()) }, nil
	default:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Migrate(db); err != nil {
			database.Close(db)
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return database.NewPersister(db), func() error { return database.Close(db) }, nil
	}
}

// openApp loads the store and makes sure the root folder exists. Sample
// content is added on a fresh install when SEED_SAMPLE_DATA is on.
func openApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	p, closeFn, err := openPersister(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, p,
		store.WithLogger(logger),
		store.WithSaveRetry(cfg.Store.SaveRetries, cfg.Store.SaveRetryDelay),
	)
	if err != nil {
		closeFn()
		return nil, err
	}

	org := organizer.New(s, logger)
	if cfg.Store.SeedSampleData {
		_, err = org.Seed()
	} else {
		_, err = org.EnsureRoot()
	}
	if err != nil {
		closeFn()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: s, org: org, close: closeFn}, nil
}

// shutdown saves pending changes and releases the backend.
func (a *app) shutdown(ctx context.Context) error {
	saveErr := a.store.Save(ctx)
	if saveErr != nil {
		a.logger.Error("final save failed", "err", saveErr)
	}
	return errors.Join(saveErr, a.close())
}

// abort releases the app after a startup failure and returns err joined with
// any shutdown error.
func (a *app) abort(err error) error {
	return errors.Join(err, a.shutdown(context.Background()))
}
