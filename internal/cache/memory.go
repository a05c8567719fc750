// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package cache

import (
	"context"
	"time"
)

// MemoryStore is an in-process Store backed by an LRU.
type MemoryStore struct {
	lru *LRU[Entry]
	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a memory store holding at most capacity entries.
// A positive ttl bounds how long an entry lives regardless of its own expiry.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: NewLRU[Entry](capacity, ttl), now: time.Now}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	entry, ok := s.lru.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	if entry.Expired(s.now()) {
		s.lru.Remove(key)
		return Entry{}, false, nil
	}
	return cloneEntry(entry), true, nil
}

// Put implements Store.
//
//nolint:gocritic // Entry passed by value to match the Store interface
func (s *MemoryStore) Put(_ context.Context, key string, entry Entry) error {
	s.lru.Add(key, cloneEntry(entry))
	return nil
}

// MarkStale implements Store.
func (s *MemoryStore) MarkStale(_ context.Context, key string) error {
	s.lru.Modify(key, markStale)
	return nil
}

// MarkStalePrefix implements Store.
func (s *MemoryStore) MarkStalePrefix(_ context.Context, prefix string) (int, error) {
	return s.lru.ModifyPrefix(prefix, markStale), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

// Cleanup sweeps expired entries and returns how many were removed.
func (s *MemoryStore) Cleanup() int {
	return s.lru.CleanupExpired()
}

//nolint:gocritic // small value type
func markStale(e Entry) Entry {
	e.Stale = true
	return e
}

// cloneEntry copies the payload so callers never share the stored slice.
//
//nolint:gocritic // small value type
func cloneEntry(e Entry) Entry {
	if e.Payload != nil {
		e.Payload = append([]byte(nil), e.Payload...)
	}
	return e
}
