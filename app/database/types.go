package database

import (
	"time"
)

type CacheEntry struct {
	Key       string
	Body      []byte
	StoredAt  time.Time
	ExpiresAt time.Time
}
