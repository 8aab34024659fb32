package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baketrak/order-system/internal/core/domain"
)

const (
	catalogKey = "catalog:products"
	catalogTTL = 5 * time.Minute
)

// CatalogCache caches the product listing in Redis as a JSON blob.
// Entries expire after catalogTTL; there is no explicit invalidation.
type CatalogCache struct {
	client *redis.Client
}

// NewCatalogCache creates a CatalogCache wrapping the given Redis client.
func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

// Get returns the cached listing. ok is false on a miss.
func (c *CatalogCache) Get(ctx context.Context) ([]domain.Product, bool, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("catalog cache get: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("catalog cache decode: %w", err)
	}
	return products, true, nil
}

// Set stores the listing (expires after catalogTTL).
func (c *CatalogCache) Set(ctx context.Context, products []domain.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	return c.client.Set(ctx, catalogKey, raw, catalogTTL).Err()
}
