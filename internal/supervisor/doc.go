// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

/*
Package supervisor provides process supervision for Careguide using suture v4.

Long-running services are organized into three layers for failure isolation:

	RootSupervisor ("careguide")
	├── DataSupervisor ("data-layer")
	│   ├── cache-maintenance (expired-entry sweeps or badger value-log GC)
	│   └── duckdb-checkpoint
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-router (progress, view and catalog events)
	└── APISupervisor ("api-layer")
	    └── ops-http (health, readiness, metrics, content preview)

A crashing event router is restarted without touching the ops API, and a
failing maintenance task never takes down message processing.

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog into the zerolog-backed slog handler from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.Add(supervisor.LayerData, services.NewPeriodicService("duckdb-checkpoint", 5*time.Minute, db.Checkpoint))
	tree.Add(supervisor.LayerMessaging, services.NewEventRouterService(router))
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService("ops-http", srv, 15*time.Second))

	errCh := tree.ServeBackground(ctx)
*/
package supervisor
