package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/cache"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "daily:user1", []byte(`{"cardId":7}`), 0))

	val, err := c.Get(ctx, "daily:user1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"cardId":7}`), val)
}

func TestMemoryCache_GetMissing(t *testing.T) {
	c := cache.NewMemoryCache()

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 10*time.Millisecond))

	_, err := c.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("abc"), 0))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	val[0] = 'x'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
