package cache

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore keeps entries in process memory. Bodies are copied on the way
// in and out so callers never share a buffer with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.entries[key]
	if !ok || !s.now().Before(stored.expiresAt) {
		return nil, ErrMiss
	}

	return &Entry{
		Body:     append([]byte(nil), stored.entry.Body...),
		StoredAt: stored.entry.StoredAt,
	}, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, entry Entry, retain time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		entry: Entry{
			Body:     append([]byte(nil), entry.Body...),
			StoredAt: entry.StoredAt,
		},
		expiresAt: s.now().Add(retain),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Purge drops entries stored before the cutoff and entries already expired.
func (s *MemoryStore) Purge(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, stored := range s.entries {
		if stored.entry.StoredAt.Before(before) || !now.Before(stored.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
