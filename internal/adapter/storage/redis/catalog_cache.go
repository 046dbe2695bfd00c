package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"donut-trade-backend/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const catalogKey = "catalog:active"

// CatalogCache implements ports.CatalogCache using Redis. The whole active
// page is stored as one JSON blob under a single key; writers drop the key
// after any transition so readers never serve a listing that left the
// catalog more than a TTL ago.
type CatalogCache struct {
	client *goredis.Client
}

// NewCatalogCache creates a new Redis-backed catalog cache.
func NewCatalogCache(client *goredis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

// GetActive returns the cached active listings, or nil, nil on a miss.
func (c *CatalogCache) GetActive(ctx context.Context) ([]domain.Listing, error) {
	val, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis catalog get: %w", err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(val, &listings); err != nil {
		return nil, fmt.Errorf("redis catalog unmarshal: %w", err)
	}
	return listings, nil
}

// SetActive stores the active listing page with a TTL. An empty page is
// cached too, so a drained catalog does not hammer the database.
func (c *CatalogCache) SetActive(ctx context.Context, listings []domain.Listing, ttl time.Duration) error {
	if listings == nil {
		listings = []domain.Listing{}
	}
	val, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("redis catalog marshal: %w", err)
	}
	if err := c.client.Set(ctx, catalogKey, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis catalog set: %w", err)
	}
	return nil
}

// Invalidate drops the cached page.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("redis catalog invalidate: %w", err)
	}
	return nil
}
