package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultSequenceKeyPrefix = "quotation:seq:"

// RedisSequenceCounter issues per-month sequences with INCR. The first use of
// a period seeds the key with SETNX so concurrent seeders agree.
type RedisSequenceCounter struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisSequenceCounter(client redis.UniversalClient) *RedisSequenceCounter {
	return &RedisSequenceCounter{client: client, keyPrefix: defaultSequenceKeyPrefix}
}

// Next increments and returns the sequence for period. The database
// transaction is not used: an increment is never given back, so a failed
// insert leaves a gap in the numbering.
func (c *RedisSequenceCounter) Next(ctx context.Context, _ *gorm.DB, period string, seed SeedFunc) (int, error) {
	key := c.keyPrefix + period

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check sequence key: %w", err)
	}
	if exists == 0 {
		existing, err := seed(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to seed number sequence: %w", err)
		}
		if err := c.client.SetNX(ctx, key, existing, 0).Err(); err != nil {
			return 0, fmt.Errorf("failed to seed sequence key: %w", err)
		}
	}

	next, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return int(next), nil
}

// Current returns the last issued sequence for period, 0 when unused
func (c *RedisSequenceCounter) Current(ctx context.Context, period string) (int, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+period).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return value, nil
}
