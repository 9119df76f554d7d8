package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:"

// カタログ読み取り用のRedisキャッシュ。値はJSONで保存する。
type CatalogRedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogRedisCache(client *redis.Client, ttl time.Duration) *CatalogRedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogRedisCache{client: client, ttl: ttl}
}

func (c *CatalogRedisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return true, nil
}

func (c *CatalogRedisCache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// catalog: で始まるキーを全部消す
func (c *CatalogRedisCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
