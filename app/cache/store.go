package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

type Entry struct {
	Body     []byte    `json:"body"`
	StoredAt time.Time `json:"stored_at"`
}

// Store is a plain key-value store. Entries may disappear at any time after
// their retain period; no other consistency is promised.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, entry Entry, retain time.Duration) error
	Delete(ctx context.Context, key string) error
	Purge(ctx context.Context, before time.Time) (int, error)
	Clear(ctx context.Context) error
}
