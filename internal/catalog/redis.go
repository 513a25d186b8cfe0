package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, productID string) (*Product, error) {
	key := cacheKey(productID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product Product
	if err2 := json.Unmarshal(data, &product); err2 != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err2)
	}

	return &product, nil
}

func (r RedisCache) Set(ctx context.Context, product *Product) error {
	key := cacheKey(product.ID)
	jsonProduct, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	ret := r.client.Set(ctx, key, string(jsonProduct), ttl)
	if ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, productID string) error {
	key := cacheKey(productID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}
