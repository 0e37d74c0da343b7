package question

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/examforge/examsim/internal/exam"
)

const (
	poolCacheKey    = "questionbank:pool"
	defaultCacheTTL = 5 * time.Minute
)

// Cache keeps the loaded question pool in Redis so exam starts do not hit
// Postgres on every request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ PoolCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context) ([]exam.Question, error) {
	data, err := c.client.Get(ctx, poolCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var pool []exam.Question
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (c *Cache) Set(ctx context.Context, pool []exam.Question) error {
	data, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, poolCacheKey, data, c.ttl).Err()
}
