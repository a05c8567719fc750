// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/careguide/internal/cache"
	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/content"
	"github.com/tomtom215/careguide/internal/database"
	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/supervisor/services"
)

// initDatabase opens DuckDB and seeds the built-in catalog when configured.
// The catalog is returned either way: it is the engine's fallback content.
func initDatabase(ctx context.Context, cfg *config.Config) (*database.DB, *content.Catalog, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}

	catalog := content.Default()
	if cfg.Database.SeedCatalog {
		if err := db.SeedCatalog(ctx, catalog); err != nil {
			closeWithLog("database", db.Close)
			return nil, nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	version, err := db.CurrentSchemaVersion(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Could not read schema version")
	}
	logging.Info().
		Int("schema_version", version).
		Strs("programs", catalog.ProgramIDs()).
		Bool("seeded", cfg.Database.SeedCatalog).
		Msg("Database initialized")

	return db, catalog, nil
}

// resultCache is the engine's cache store together with its upkeep.
type resultCache struct {
	Store cache.Store

	// Maintain runs periodically under the data layer supervisor.
	Maintain services.Task

	Close func() error
}

// initCacheStore builds the configured cache backend.
func initCacheStore(cfg *config.CacheConfig) (*resultCache, error) {
	switch cfg.Backend {
	case "badger":
		store, err := cache.OpenBadgerStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open cache store: %w", err)
		}
		logging.Info().Str("path", cfg.Path).Msg("Badger result cache opened")
		return &resultCache{
			Store: store,
			Maintain: func(context.Context) error {
				return store.RunGC(cfg.GCDiscardRatio)
			},
			Close: store.Close,
		}, nil

	default:
		store := cache.NewMemoryStore(cfg.Capacity, cfg.TTL)
		return &resultCache{
			Store: store,
			Maintain: func(context.Context) error {
				if removed := store.Cleanup(); removed > 0 {
					logging.Debug().Int("removed", removed).Msg("Expired cache entries removed")
				}
				return nil
			},
			Close: func() error { return nil },
		}, nil
	}
}
