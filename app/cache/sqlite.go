package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/headlines/app/database"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists entries through the cache_entries table so a restart
// keeps serving warm responses.
type SQLiteStore struct {
	repo database.CacheRepositoryInterface
}

func NewSQLiteStore(repo database.CacheRepositoryInterface) *SQLiteStore {
	return &SQLiteStore{repo: repo}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrMiss
	}
	return &Entry{Body: row.Body, StoredAt: row.StoredAt}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, entry Entry, retain time.Duration) error {
	return s.repo.Put(ctx, database.CacheEntry{
		Key:       key,
		Body:      entry.Body,
		StoredAt:  entry.StoredAt,
		ExpiresAt: time.Now().Add(retain),
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *SQLiteStore) Purge(ctx context.Context, before time.Time) (int, error) {
	expired, err := s.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	old, err := s.repo.DeleteStoredBefore(ctx, before)
	if err != nil {
		return int(expired), fmt.Errorf("failed to purge cache: %w", err)
	}
	return int(expired + old), nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.repo.DeleteAll(ctx)
	return err
}
