// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package cache

import (
	"context"
	"net/url"
	"time"
)

// Entry is a cached personalization result for one (user, program) key.
type Entry struct {
	// Payload is the encoded result. Stores replace it as a whole.
	Payload []byte `json:"payload"`

	// Fingerprint identifies the request inputs the payload was built for.
	Fingerprint string `json:"fingerprint"`

	// Generation is the key's invalidation generation at compute time.
	Generation uint64 `json:"generation"`

	// Stale marks an entry that must be recomputed before reuse.
	Stale bool `json:"stale"`

	StoredAt time.Time `json:"stored_at"`

	// ExpiresAt is optional; zero means no expiry.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the entry has passed its expiry at now.
//
//nolint:gocritic // value receiver matches how entries are passed around
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Store is the backing store of the personalization cache.
// Implementations must replace entries atomically.
type Store interface {
	// Get returns the entry for key. A missing or expired entry returns false.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Put stores the entry, replacing any previous value.
	Put(ctx context.Context, key string, entry Entry) error

	// MarkStale flags the entry for key as stale. Missing keys are not an error.
	MarkStale(ctx context.Context, key string) error

	// MarkStalePrefix flags every entry whose key has prefix and returns the count.
	MarkStalePrefix(ctx context.Context, prefix string) (int, error)

	// Delete removes the entry for key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

const keyPrefix = "content:"

// Key builds the store key for a (user, program) pair. Keys of one program
// share ProgramPrefix(programID).
func Key(userID, programID string) string {
	return ProgramPrefix(programID) + url.QueryEscape(userID)
}

// ProgramPrefix is the key prefix shared by every user of a program.
func ProgramPrefix(programID string) string {
	return keyPrefix + url.QueryEscape(programID) + "/"
}
