package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const cachePrefix = "cache:"

type CacheRepo struct {
	client *goredis.Client
}

func NewCacheRepo(client *goredis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

// GetJSON reports a miss as (false, nil).
func (r *CacheRepo) GetJSON(ctx context.Context, key string, target any) (bool, error) {
	if r.client == nil {
		return false, errNilClient
	}

	raw, err := r.client.Get(ctx, cachePrefix+key).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get cache key: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decode cache key: %w", err)
	}
	return true, nil
}

func (r *CacheRepo) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return errNilClient
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := r.client.Set(ctx, cachePrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cache key: %w", err)
	}
	return nil
}
