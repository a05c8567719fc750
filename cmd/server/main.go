// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/logging"
	"github.com/tomtom215/careguide/internal/supervisor"
	"github.com/tomtom215/careguide/internal/supervisor/services"
)

// checkpointInterval is how often DuckDB's WAL is folded into the database file.
const checkpointInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Careguide stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires every component and blocks until the process is signaled.
//
//nolint:gocyclo // Sequential setup steps
func run(cfg *config.Config) error {
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Careguide")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, catalog, err := initDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWithLog("database", db.Close)

	cacheStore, err := initCacheStore(&cfg.Cache)
	if err != nil {
		return err
	}
	defer closeWithLog("cache", cacheStore.Close)

	events, err := initTransport(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.NATS.CloseTimeout)
		defer shutdownCancel()
		if err := events.Close(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing event transport")
		}
	}()

	engine, err := initEngine(cfg, db, catalog, cacheStore.Store, events.publisher)
	if err != nil {
		return err
	}

	router, err := initEventRouter(cfg, events, db, engine.Engine)
	if err != nil {
		return err
	}

	server, err := initHTTPServer(cfg, engine, db, events)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.Add(supervisor.LayerData, services.NewPeriodicService("cache-maintenance", cfg.Cache.MaintenanceInterval, cacheStore.Maintain))
	tree.Add(supervisor.LayerData, services.NewPeriodicService("duckdb-checkpoint", checkpointInterval, db.Checkpoint))
	tree.Add(supervisor.LayerMessaging, services.NewEventRouterService(router))
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService("ops-http", server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// The channel delivers exactly one value and is never closed.
	var runErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("supervisor tree: %w", err)
		}
		cancel()
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	return runErr
}

func closeWithLog(resource string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("resource", resource).Msg("Error during shutdown")
	}
}
