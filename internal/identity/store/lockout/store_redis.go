package lockout

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failureKeyPrefix = "lockout:fail:"
	lockKeyPrefix    = "lockout:lock:"
)

// Redis is the production lockout store. Counters and locks are plain keys
// with TTLs, so state is shared across instances and expires on its own.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) RecordFailure(ctx context.Context, username string, window time.Duration) (int, error) {
	key := failureKeyPrefix + username
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

func (s *Redis) Lock(ctx context.Context, username string, duration time.Duration) error {
	return s.client.Set(ctx, lockKeyPrefix+username, "1", duration).Err()
}

func (s *Redis) IsLocked(ctx context.Context, username string) (bool, error) {
	_, err := s.client.Get(ctx, lockKeyPrefix+username).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Redis) Clear(ctx context.Context, username string) error {
	return s.client.Del(ctx, failureKeyPrefix+username, lockKeyPrefix+username).Err()
}
