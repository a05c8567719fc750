// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package api

import "errors"

// ErrMissingEngine is returned by NewRouter without a content engine.
var ErrMissingEngine = errors.New("api: content engine is required")
