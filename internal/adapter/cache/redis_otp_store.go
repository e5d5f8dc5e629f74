package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feastly/delivery-api/internal/usecase"
)

// RedisOTPStore holds one-time codes keyed by phone number. Expiry is
// redis TTL, so a restarted process never resurrects stale codes and no
// process-global map is involved.
type RedisOTPStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOTPStore(rdb *redis.Client, ttl time.Duration) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb, ttl: ttl}
}

var _ usecase.OTPStore = (*RedisOTPStore)(nil)

func (s *RedisOTPStore) Put(ctx context.Context, phone, code string) error {
	return s.rdb.Set(ctx, "otp:"+phone, code, s.ttl).Err()
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "otp:"+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, "otp:"+phone).Err()
}
