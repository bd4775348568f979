package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

const (
	cacheKeyPrefix  = "tsa:cache:"
	defaultCacheTTL = 24 * time.Hour
)

// RedisCache is a Redis-backed QuestionCache so identical generation
// requests skip the backend across processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ QuestionCache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*trivia.Question, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var question trivia.Question
	if err := json.Unmarshal(data, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, q trivia.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+key, data, c.ttl).Err()
}
