package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/headlines/app/metrics"
	"golang.org/x/sync/singleflight"
)

type Status string

const (
	StatusHit   Status = "HIT"
	StatusMiss  Status = "MISS"
	StatusStale Status = "STALE"
)

const writeTimeout = 5 * time.Second

// Policy controls how long an entry is served as fresh (TTL) and how much
// longer it may stand in when recomputation fails (Stale).
type Policy struct {
	TTL   time.Duration
	Stale time.Duration
}

// browserMaxAge caps client caching at a minute; the shared cache keeps the
// full TTL.
func (p Policy) browserMaxAge() time.Duration {
	if p.TTL < time.Minute {
		return p.TTL
	}
	return time.Minute
}

func (p Policy) retain() time.Duration {
	return p.TTL + p.Stale
}

// CacheControl renders the matching response header.
func (p Policy) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		int(p.browserMaxAge().Seconds()), int(p.TTL.Seconds()), int(p.Stale.Seconds()))
}

type ComputeFunc func(ctx context.Context) ([]byte, error)

// EdgeCache serves stored responses while fresh and recomputes otherwise.
// Fresh results are written back in the background; call Wait to drain
// pending writes.
type EdgeCache struct {
	store  Store
	group  singleflight.Group
	writes sync.WaitGroup
	now    func() time.Time
}

func NewEdgeCache(store Store) *EdgeCache {
	return &EdgeCache{
		store: store,
		now:   time.Now,
	}
}

// GetOrCompute returns the stored body unchanged on a fresh hit. On a miss it
// runs compute for this caller and stores the result without waiting for the
// write. Concurrent misses on one key share a single compute. When compute
// fails and an entry younger than TTL+Stale exists, that entry is served.
func (c *EdgeCache) GetOrCompute(ctx context.Context, key string, policy Policy, compute ComputeFunc) ([]byte, Status, error) {
	entry, err := c.store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrMiss) {
		metrics.ObserveCache("error")
		return nil, "", fmt.Errorf("failed to read cache entry: %w", err)
	}

	now := c.now()
	if entry != nil && now.Sub(entry.StoredAt) < policy.TTL {
		metrics.ObserveCache("hit")
		return entry.Body, StatusHit, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		body, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.storeAsync(key, Entry{Body: body, StoredAt: c.now()}, policy.retain())
		return body, nil
	})
	if err != nil {
		if entry != nil && now.Sub(entry.StoredAt) < policy.retain() {
			metrics.ObserveCache("stale")
			slog.Warn("Serving stale cache entry", "key", key, "age", now.Sub(entry.StoredAt), "error", err)
			return entry.Body, StatusStale, nil
		}
		metrics.ObserveCache("error")
		return nil, "", err
	}

	metrics.ObserveCache("miss")
	return v.([]byte), StatusMiss, nil
}

// Refresh recomputes key and stores the result before returning. Entries
// younger than TTL are left untouched. The bool reports whether a recompute
// happened.
func (c *EdgeCache) Refresh(ctx context.Context, key string, policy Policy, compute ComputeFunc) (bool, error) {
	entry, err := c.store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrMiss) {
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if entry != nil && c.now().Sub(entry.StoredAt) < policy.TTL {
		return false, nil
	}

	_, err, _ = c.group.Do(key, func() (any, error) {
		body, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Put(ctx, key, Entry{Body: body, StoredAt: c.now()}, policy.retain()); err != nil {
			return nil, fmt.Errorf("failed to store cache entry: %w", err)
		}
		return body, nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *EdgeCache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

func (c *EdgeCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Purge removes entries stored more than olderThan ago.
func (c *EdgeCache) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	return c.store.Purge(ctx, c.now().Add(-olderThan))
}

// Wait blocks until background writes have finished.
func (c *EdgeCache) Wait() {
	c.writes.Wait()
}

func (c *EdgeCache) storeAsync(key string, entry Entry, retain time.Duration) {
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := c.store.Put(ctx, key, entry, retain); err != nil {
			slog.Warn("Failed to store cache entry", "key", key, "error", err)
		}
	}()
}
