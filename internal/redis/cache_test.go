package redis_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCache(t *testing.T) (*redis.ScanCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return redis.NewScanCache(client, time.Minute, zap.NewNop()), mr
}

func TestScanCache(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	cache, mr := setupCache(t)

	_, generation, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, generation)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []*types.ReputationRecord{
		{AccountID: 1, PositiveCount: 5, NegativeCount: 1, LastMutationAt: at},
		{AccountID: 2, PositiveCount: 3, LastMutationAt: at},
	}

	stored, err := cache.Store(ctx, generation, records)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, mr.Exists(redis.ScanKey))
	assert.Equal(t, time.Minute, mr.TTL(redis.ScanKey))

	cached, _, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cached, 2)
	assert.Equal(t, uint64(1), cached[0].AccountID)
	assert.Equal(t, int64(5), cached[0].PositiveCount)
	assert.True(t, cached[0].LastMutationAt.Equal(at))

	require.NoError(t, cache.Invalidate(ctx))

	_, generation, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), generation)
}

func TestScanCacheRejectsStaleStore(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	cache, mr := setupCache(t)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := []*types.ReputationRecord{{AccountID: 1, PositiveCount: 1, LastMutationAt: at}}
	fresh := []*types.ReputationRecord{{AccountID: 1, PositiveCount: 2, LastMutationAt: at}}

	// A build misses and starts scanning at the current generation
	_, seen, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// A mutation commits before the scan result is stored
	require.NoError(t, cache.Invalidate(ctx))

	stored, err := cache.Store(ctx, seen, stale)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists(redis.ScanKey))

	_, current, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, seen+1, current)

	// A rescan at the new generation is accepted
	stored, err = cache.Store(ctx, current, fresh)
	require.NoError(t, err)
	assert.True(t, stored)

	cached, _, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, int64(2), cached[0].PositiveCount)
}

func TestScanCacheCorruptEntry(t *testing.T) {
	t.Parallel()

	cache, mr := setupCache(t)
	require.NoError(t, mr.Set(redis.ScanKey, "not json"))

	_, _, ok, err := cache.Get(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
}
