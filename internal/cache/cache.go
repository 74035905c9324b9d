// Package cache stores catalog listings. Cart reads never go through it: cart
// totals always use live product prices.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

const keyPrefix = "catalog:products:"

// ProductCache caches product listings by filter.
type ProductCache interface {
	// GetProducts reports ok=false on a miss.
	GetProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, bool, error)
	SetProducts(ctx context.Context, filter entity.ProductFilter, products []entity.Product) error
	Invalidate(ctx context.Context) error
	Ping(ctx context.Context) error
}

// RedisCache is the ProductCache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ProductCache = (*RedisCache)(nil)

// NewRedisCache parses a redis:// URL and returns a cache with the given TTL.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+filter.CacheKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read catalog cache: %w", err)
	}
	var products []entity.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("failed to decode catalog cache: %w", err)
	}
	return products, true, nil
}

func (c *RedisCache) SetProducts(ctx context.Context, filter entity.ProductFilter, products []entity.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode catalog cache: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+filter.CacheKey(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Nop never hits. It is used when REDIS_URL is empty.
type Nop struct{}

func (Nop) GetProducts(context.Context, entity.ProductFilter) ([]entity.Product, bool, error) {
	return nil, false, nil
}

func (Nop) SetProducts(context.Context, entity.ProductFilter, []entity.Product) error { return nil }

func (Nop) Invalidate(context.Context) error { return nil }

func (Nop) Ping(context.Context) error { return nil }
