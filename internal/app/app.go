// Package app wires storage, stores and seed data into a ready-to-use App.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/threedcost/internal/config"
	"github.com/Simplici0/threedcost/internal/db"
	"github.com/Simplici0/threedcost/internal/kvstore"
	"github.com/Simplici0/threedcost/internal/material"
	"github.com/Simplici0/threedcost/internal/migrations"
	"github.com/Simplici0/threedcost/internal/seed"
	"github.com/Simplici0/threedcost/internal/settings"
)

// Options adjusts how New builds the App.
type Options struct {
	// InMemory skips SQLite and keeps everything in process memory.
	InMemory bool
	// Backend overrides the storage backend. Used by tests.
	Backend kvstore.Backend
}

// App owns the loaded stores and the resources behind them.
type App struct {
	Settings *settings.Store
	Profiles *material.Store

	log      *zap.Logger
	database *sql.DB
}

// New opens storage, loads both stores, and seeds starter profiles when configured.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts Options) (*App, error) {
	const op = "app.New"

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	a := &App{log: log}

	backend := opts.Backend
	switch {
	case backend != nil:
	case opts.InMemory:
		backend = kvstore.NewMemory()
		log.Info("using in-memory storage")
	default:
		database, err := db.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := migrations.Up(ctx, database); err != nil {
			database.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.database = database
		backend = kvstore.NewSQLite(database)
		log.Info("using sqlite storage", zap.String("path", cfg.DBPath))
	}

	kv := kvstore.New(backend, log.Named("kvstore"))
	a.Settings = settings.New(kv, log)
	a.Profiles = material.New(kv, log)

	a.Settings.Load(ctx)
	a.Profiles.Load(ctx)

	if cfg.SeedProfiles {
		stats, err := seed.Run(ctx, a.Profiles)
		if err != nil && !errors.Is(err, kvstore.ErrPersist) {
			_ = a.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if stats.Inserts > 0 {
			log.Info("seeded starter profiles", zap.Int("inserts", stats.Inserts))
		}
	}

	return a, nil
}

// Close releases the database, if one was opened.
func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	if err := a.database.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	a.database = nil
	return nil
}
