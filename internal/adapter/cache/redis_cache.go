package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

// RedisCache keeps the latest known order status for live views so the
// tracking endpoints don't hit MySQL on every poll.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

var _ usecase.OrderCache = (*RedisCache)(nil)

func (r *RedisCache) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	return r.rdb.Set(ctx, "order:status:"+orderID, string(status), r.ttl).Err()
}

func (r *RedisCache) GetStatus(ctx context.Context, orderID string) (domain.Status, bool, error) {
	val, err := r.rdb.Get(ctx, "order:status:"+orderID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return domain.Status(val), true, nil
}
