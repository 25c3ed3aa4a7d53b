package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/headlines/app/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	return NewSQLiteStore(database.NewCacheRepository(db))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	storedAt := time.Now().UTC().Truncate(time.Millisecond)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Put(ctx, "k", Entry{Body: []byte(`{"ok":true}`), StoredAt: storedAt}, time.Minute))

	entry, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"ok":true}`), entry.Body)
	assert.True(t, entry.StoredAt.Equal(storedAt))

	require.NoError(t, store.Put(ctx, "k", Entry{Body: []byte("v2"), StoredAt: storedAt}, time.Minute))
	entry, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), entry.Body)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSQLiteStorePurgeAndClear(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, "expired", Entry{Body: []byte("1"), StoredAt: now}, -time.Second))
	require.NoError(t, store.Put(ctx, "old", Entry{Body: []byte("2"), StoredAt: now.Add(-2 * time.Hour)}, time.Hour))
	require.NoError(t, store.Put(ctx, "fresh", Entry{Body: []byte("3"), StoredAt: now}, time.Hour))

	_, err := store.Get(ctx, "expired")
	assert.ErrorIs(t, err, ErrMiss)

	removed, err := store.Purge(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.Get(ctx, "fresh")
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, "fresh")
	assert.ErrorIs(t, err, ErrMiss)
}
