// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

/*
Package cache provides the backing stores of the personalization result
cache and the generic LRU they are built on.

# Stores

Store is keyed by Key(userID, programID). Two implementations exist:

  - MemoryStore: in-process, bounded by an LRU, optional TTL
  - BadgerStore: persistent BadgerDB store, entries encoded as JSON

Both replace entries atomically, so readers never observe a partially
written result. Invalidation never deletes data; it flags entries as stale
(MarkStale, MarkStalePrefix) and the engine recomputes on next read.

# LRU

LRU is also used directly for message de-duplication through IsDuplicate.

# Thread Safety

All types in this package are safe for concurrent use.
*/
package cache
