// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tagcache

import (
	"context"
	"slices"
	"sync"

	"github.com/petar-djukic/repomap/pkg/types"
)

// MemoryStore is an in-process TagStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[types.CacheKey][]types.Tag
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[types.CacheKey][]types.Tag)}
}

// Get returns a copy of the tags stored for key.
func (s *MemoryStore) Get(_ context.Context, key types.CacheKey) ([]types.Tag, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(tags), true, nil
}

// Put stores tags for key unless a value is already present.
func (s *MemoryStore) Put(_ context.Context, key types.CacheKey, tags []types.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return nil
	}
	s.entries[key] = slices.Clone(tags)
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
