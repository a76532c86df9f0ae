// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"
	"storefront/internal/platform/metrics"
)

const cacheName = "catalog"

// CachingProductRepository decorates a ProductRepository with a Redis
// read-through cache of the full listing.
type CachingProductRepository struct {
	inner     usecase.ProductRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProductRepository = (*CachingProductRepository)(nil)

// NewCachingProductRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "catalog".
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProductRepository, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "catalog"
	}
	return &CachingProductRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingProductRepository) listKey() string {
	return c.namespace + ":products"
}

// List returns the cached listing, falling back to the database on a miss.
func (c *CachingProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.List(ctx)
	}

	key := c.listKey()

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Product
		if err := json.Unmarshal(b, &out); err == nil {
			metrics.CacheHit(cacheName)
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}
	metrics.CacheMiss(cacheName)

	// 2) Fallback to database
	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.Warn("failed to cache catalog", "error", err)
		}
	}
	return out, nil
}

// Count is not cached; the importer needs the live value.
func (c *CachingProductRepository) Count(ctx context.Context) (int64, error) {
	return c.inner.Count(ctx)
}

// CreateAll inserts products and invalidates the cached listing.
func (c *CachingProductRepository) CreateAll(ctx context.Context, products []entity.Product) error {
	if err := c.inner.CreateAll(ctx, products); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	// Best effort: the entry also expires with its TTL.
	if err := c.rdb.Del(ctx, c.listKey()).Err(); err != nil {
		slog.Warn("failed to invalidate catalog cache", "error", err)
	}
	return nil
}
