// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

/*
Package services provides suture.Service wrappers for Careguide components.

Each wrapper translates a component's lifecycle (ListenAndServe, Run/Close,
periodic work) into suture's context-aware Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTPServerService (api layer):
  - Wraps the ops *http.Server with graceful shutdown
  - http.ErrServerClosed is treated as a clean stop

EventRouterService (messaging layer):
  - Runs the event router until the context ends, then closes it
  - A router that stops on its own is reported as an error so suture
    restarts it

PeriodicService (data layer):
  - Runs a task on a fixed interval: cache sweeps, badger value-log GC,
    DuckDB checkpoints
  - Task errors are logged and counted; they never stop the service

All services implement fmt.Stringer so suture events name them.
*/
package services
