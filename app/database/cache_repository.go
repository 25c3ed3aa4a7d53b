package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ CacheRepositoryInterface = (*CacheRepository)(nil)

type CacheRepository struct {
	db *DB
}

func NewCacheRepository(db *DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get returns nil when the key is unknown or the entry has expired.
func (r *CacheRepository) Get(ctx context.Context, key string) (*CacheEntry, error) {
	var (
		entry     CacheEntry
		storedAt  int64
		expiresAt int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT cache_key, body, stored_at, expires_at
		FROM cache_entries
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().UnixMilli()).Scan(&entry.Key, &entry.Body, &storedAt, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	entry.StoredAt = time.UnixMilli(storedAt).UTC()
	entry.ExpiresAt = time.UnixMilli(expiresAt).UTC()

	return &entry, nil
}

func (r *CacheRepository) Put(ctx context.Context, entry CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_entries (cache_key, body, stored_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			body = excluded.body,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at
	`, entry.Key, entry.Body, entry.StoredAt.UnixMilli(), entry.ExpiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return result.RowsAffected()
}

func (r *CacheRepository) DeleteStoredBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE stored_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old cache entries: %w", err)
	}
	return result.RowsAffected()
}

func (r *CacheRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return result.RowsAffected()
}
