package footballdata

import (
	"context"
	"errors"
	"time"

	"football-buddy/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "footbuddy:fd:"

// RedisCache keeps successful response bodies for a fixed TTL.
type RedisCache struct {
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{
		redis: rdb,
		ttl:   ttl,
		logger: log.With(map[string]interface{}{
			"component": "footballdata.cache",
		}),
	}
}

// Get reports a miss for absent keys and for Redis failures alike.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.redis.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
		return nil, false
	}
	return body, true
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.redis.Set(ctx, cacheKeyPrefix+key, body, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}
