// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package content holds the statically authored care program catalog.
//
// The catalog has two roles. It is the default content provider used by the
// recommendation engine when personalization fails, and it is the seed for
// the live content store. It also satisfies the content and rule repository
// contracts so that it can stand in for the database in tests.
//
// Example:
//
//	catalog := content.Default()
//	stage, ok := catalog.DefaultStage("weightLoss", 1)
package content
