// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (string, error) {
	return getPath(ctx, s, sessionID)
}

func (s *MemoryStore) Set(_ context.Context, sessionID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = Entry{SessionID: sessionID, Path: path, UpdatedAt: s.now()}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, entry := range s.entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}
