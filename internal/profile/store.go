// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrProfileNotFound indicates the store holds no profile for a user.
// Absence is a valid state, not a failure: callers default to the
// cold-start profile.
var ErrProfileNotFound = errors.New("profile not found")

// Store is the per-user key-value persistence surface for profiles.
type Store interface {
	// Get retrieves a profile by user ID, ErrProfileNotFound on miss.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Put persists a full profile snapshot.
	Put(ctx context.Context, p *Profile) error
}

// profileKeyPrefix namespaces profile keys in BadgerDB.
const profileKeyPrefix = "profile:"

// BadgerStore implements Store using BadgerDB for durable storage,
// one JSON document per user.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed profile store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get retrieves a profile by user ID.
func (s *BadgerStore) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrProfileNotFound
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Put persists a full profile snapshot, replacing any previous one.
func (s *BadgerStore) Put(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(profileKeyPrefix+p.UserID), data); err != nil {
			return fmt.Errorf("set profile: %w", err)
		}
		return nil
	})
}

// MemoryStore implements Store in memory. Suitable for development and
// testing; data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string][]byte
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string][]byte)}
}

// Get retrieves a profile by user ID.
func (s *MemoryStore) Get(ctx context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	data, ok := s.profiles[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrProfileNotFound
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Put persists a full profile snapshot.
func (s *MemoryStore) Put(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	s.mu.Lock()
	s.profiles[p.UserID] = data
	s.mu.Unlock()
	return nil
}
