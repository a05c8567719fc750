// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// BadgerStore is a persistent Store backed by BadgerDB. Results survive
// restarts, so a freshly started process can serve cached content at once.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

var _ Store = (*BadgerStore)(nil)

// OpenBadgerStore opens (or creates) a Badger database at path. An empty
// path opens an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db, now: time.Now}, nil
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}

	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	if entry.Expired(s.now()) {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Put implements Store.
//
//nolint:gocritic // Entry passed by value to match the Store interface
func (s *BadgerStore) Put(ctx context.Context, key string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := s.badgerEntry(key, entry)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// MarkStale implements Store.
func (s *BadgerStore) MarkStale(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		var entry Entry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return err
		}
		entry.Stale = true
		e, err := s.badgerEntry(key, entry)
		if err != nil {
			return err
		}
		return txn.SetEntry(e)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark stale %s: %w", key, err)
	}
	return nil
}

// MarkStalePrefix implements Store. Matching entries are rewritten through
// a write batch so large programs do not exceed transaction limits.
func (s *BadgerStore) MarkStalePrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	type pending struct {
		key   string
		entry Entry
	}
	var updates []pending

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			if entry.Stale {
				continue
			}
			entry.Stale = true
			updates = append(updates, pending{key: string(item.KeyCopy(nil)), entry: entry})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan prefix %s: %w", prefix, err)
	}
	if len(updates) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, u := range updates {
		e, err := s.badgerEntry(u.key, u.entry)
		if err != nil {
			return 0, err
		}
		if err := wb.SetEntry(e); err != nil {
			return 0, fmt.Errorf("mark stale %s: %w", u.key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush stale marks: %w", err)
	}
	return len(updates), nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// RunGC reclaims value log space until there is nothing left to rewrite.
func (s *BadgerStore) RunGC(discardRatio float64) error {
	for {
		err := s.db.RunValueLogGC(discardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("value log gc: %w", err)
		}
	}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

//nolint:gocritic // Entry passed by value to keep callers simple
func (s *BadgerStore) badgerEntry(key string, entry Entry) (*badger.Entry, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	e := badger.NewEntry([]byte(key), data)
	if !entry.ExpiresAt.IsZero() {
		ttl := entry.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			ttl = time.Second
		}
		e = e.WithTTL(ttl)
	}
	return e, nil
}
