package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const quotaKeyPrefix = "mintgate:quota:"

// RedisStore counts consumed quota in Redis so multiple gateway instances
// sharing a project see one set of counters. Counters have no TTL; quota is
// permanent for the life of a binding.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Count(ctx context.Context, key string) (uint64, error) {
	val, err := s.client.Get(ctx, quotaKeyPrefix+key).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get quota count: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string) (uint64, error) {
	val, err := s.client.Incr(ctx, quotaKeyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment quota: %w", err)
	}
	return uint64(val), nil
}
