package database

import (
	"context"
	"time"
)

type CacheRepositoryInterface interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteStoredBefore(ctx context.Context, before time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
