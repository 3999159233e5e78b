package tdx_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := tdx.NewMemoryCache(10)
	ctx := context.Background()

	entry := &tdx.CacheEntry{
		Data:      []byte(`[{"ID":1,"Name":"Annex"}]`),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		Kind:      "location",
	}

	err := cache.Set(ctx, "tdx:location", entry)
	require.NoError(t, err)

	retrieved, err := cache.Get(ctx, "tdx:location")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.Kind, retrieved.Kind)
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := tdx.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not found")
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := tdx.NewMemoryCache(10)
	ctx := context.Background()

	entry := &tdx.CacheEntry{
		Data:      []byte("stale"),
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}

	require.NoError(t, cache.Set(ctx, "key1", entry))

	_, err := cache.Get(ctx, "key1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry expired")
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_ZeroExpiryNeverExpires(t *testing.T) {
	t.Parallel()

	cache := tdx.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forever", &tdx.CacheEntry{Data: []byte("x")}))
	assert.True(t, cache.Has(ctx, "forever"))
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := tdx.NewMemoryCache(10)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, &tdx.CacheEntry{Data: []byte(key)}))
	}

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "b"))
	assert.False(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_MaxSizeEvictsOldest(t *testing.T) {
	t.Parallel()

	cache := tdx.NewMemoryCache(2)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, &tdx.CacheEntry{Data: []byte(key)}))
	}

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))

	// Overwriting an existing key does not evict.
	require.NoError(t, cache.Set(ctx, "c", &tdx.CacheEntry{Data: []byte("c2")}))
	assert.True(t, cache.Has(ctx, "b"))
}

func TestMemoryCache_Cleanup(t *testing.T) {
	t.Parallel()

	cache := tdx.NewMemoryCache(10)
	ctx := context.Background()

	_ = cache.Set(ctx, "expired", &tdx.CacheEntry{Data: []byte("expired"), ExpiresAt: time.Now().Add(-time.Hour)})
	_ = cache.Set(ctx, "valid", &tdx.CacheEntry{Data: []byte("valid"), ExpiresAt: time.Now().Add(time.Hour)})

	cache.Cleanup()

	assert.True(t, cache.Has(ctx, "valid"))
	assert.Equal(t, 1, cache.Len())
}

func TestRedisCache(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := tdx.NewRedisCache(ctx, &tdx.RedisConfig{Addr: mr.Addr(), KeyPrefix: "tdx-test:"})
	require.NoError(t, err)

	t.Cleanup(func() { _ = cache.Close() })

	entry := &tdx.CacheEntry{Data: []byte(`[]`), ExpiresAt: time.Now().Add(time.Minute), Kind: "group"}
	require.NoError(t, cache.Set(ctx, "tdx-test:group", entry))
	require.NoError(t, cache.Set(ctx, "other:group", entry))
	assert.True(t, cache.Has(ctx, "tdx-test:group"))

	got, err := cache.Get(ctx, "tdx-test:group")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)

	require.NoError(t, cache.Clear(ctx))

	_, err = cache.Get(ctx, "tdx-test:group")
	assert.True(t, errors.Is(err, tdx.ErrCacheKeyNotFound))
	assert.True(t, mr.Exists("other:group"), "keys outside the prefix survive Clear")
}

func TestNATSKVCache(t *testing.T) {
	url := os.Getenv("TDX_TEST_NATS_URL")
	if url == "" {
		t.Skip("TDX_TEST_NATS_URL not set")
	}

	ctx := context.Background()

	cache, err := tdx.NewNATSKVCache(&tdx.NATSKVConfig{URL: url, Bucket: "tdx-test", KeyPrefix: "tdx:"})
	if err != nil {
		t.Skipf("NATS not available: %v", err)
	}

	t.Cleanup(func() {
		_ = cache.Clear(ctx)
		_ = cache.Close()
	})

	entry := &tdx.CacheEntry{Data: []byte(`[{"ID":9}]`), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, cache.Set(ctx, "tdx:custom attribute:27", entry))

	got, err := cache.Get(ctx, "tdx:custom attribute:27")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)

	require.NoError(t, cache.Delete(ctx, "tdx:custom attribute:27"))
	assert.False(t, cache.Has(ctx, "tdx:custom attribute:27"))

	require.NoError(t, cache.Set(ctx, "tdx:group", entry))
	require.NoError(t, cache.Set(ctx, "elsewhere:group", entry))
	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "tdx:group"))
	assert.True(t, cache.Has(ctx, "elsewhere:group"))
	require.NoError(t, cache.Delete(ctx, "elsewhere:group"))
}
