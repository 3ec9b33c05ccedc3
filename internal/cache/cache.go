// Package cache keeps a read-through copy of the catalog in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

// KeyCatalog holds the JSON-encoded catalog list.
const KeyCatalog = "storefront:catalog:v1"

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

// CatalogCache stores the catalog under KeyCatalog with a TTL.
type CatalogCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCatalogCache creates a cache over client. A non-positive ttl means entries never expire.
func NewCatalogCache(client redis.Cmdable, ttl time.Duration) *CatalogCache {
	if ttl < 0 {
		ttl = 0
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// GetCatalog returns the cached catalog. ok is false on a miss.
func (c *CatalogCache) GetCatalog(ctx context.Context) ([]domain.CatalogItem, bool, error) {
	val, err := c.client.Get(ctx, KeyCatalog).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get catalog from redis: %w", err)
	}

	var items []domain.CatalogItem
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal catalog from redis: %w", err)
	}
	return items, true, nil
}

// SetCatalog stores the catalog.
func (c *CatalogCache) SetCatalog(ctx context.Context, items []domain.CatalogItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := c.client.Set(ctx, KeyCatalog, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set catalog in redis: %w", err)
	}
	return nil
}

// InvalidateCatalog drops the cached catalog.
func (c *CatalogCache) InvalidateCatalog(ctx context.Context) error {
	if err := c.client.Del(ctx, KeyCatalog).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete catalog from redis: %w", err)
	}
	return nil
}
