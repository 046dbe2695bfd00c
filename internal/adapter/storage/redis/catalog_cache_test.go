package redis_test

import (
	"context"
	"testing"
	"time"

	"donut-trade-backend/internal/adapter/storage/redis"
	"donut-trade-backend/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogCache(t *testing.T) (*redis.CatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewCatalogCache(client), mr
}

func TestCatalogCache_MissThenHit(t *testing.T) {
	cache, _ := newCatalogCache(t)
	ctx := context.Background()

	// Cold cache: miss is nil, nil
	got, err := cache.GetActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	listings := []domain.Listing{
		{
			ID:       uuid.New(),
			SellerID: uuid.New(),
			Title:    "IG Spawner x3",
			ItemType: domain.ItemTypeSpawner,
			ItemName: "iron_golem_spawner",
			Quantity: 3,
			Price:    45000,
			Status:   domain.ListingStatusActive,
		},
	}
	require.NoError(t, cache.SetActive(ctx, listings, time.Minute))

	got, err = cache.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, listings[0].ID, got[0].ID)
	assert.Equal(t, listings[0].Price, got[0].Price)
}

func TestCatalogCache_EmptyPageIsCached(t *testing.T) {
	cache, _ := newCatalogCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetActive(ctx, nil, time.Minute))

	got, err := cache.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, got, "cached empty page should read back as empty, not miss")
	assert.Empty(t, got)
}

func TestCatalogCache_Invalidate(t *testing.T) {
	cache, _ := newCatalogCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetActive(ctx, []domain.Listing{{ID: uuid.New()}}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx))

	got, err := cache.GetActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCatalogCache_TTLExpiry(t *testing.T) {
	cache, mr := newCatalogCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetActive(ctx, []domain.Listing{{ID: uuid.New()}}, 30*time.Second))

	mr.FastForward(31 * time.Second)

	got, err := cache.GetActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
