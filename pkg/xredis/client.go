package xredis

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

type Client interface {
	Exist(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key ...string) error

	// Sorted list
	ZAdd(ctx context.Context, key string, z ...redis.Z) error
	ZRem(ctx context.Context, key string, member ...string) error
	ZRevRangeWithScores(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
	ZRevRank(ctx context.Context, key string, member string) (uint64, error)
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        5,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Exist(ctx context.Context, key string) (bool, error) {
	n, err := c.redisClient.Exists(ctx, key).Uint64()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (c *client) Del(ctx context.Context, key ...string) error {
	return c.redisClient.Del(ctx, key...).Err()
}

func (c *client) ZAdd(ctx context.Context, key string, z ...redis.Z) error {
	return c.redisClient.ZAdd(ctx, key, z...).Err()
}

func (c *client) ZRem(ctx context.Context, key string, member ...string) error {
	members := make([]any, 0, len(member))
	for _, m := range member {
		members = append(members, m)
	}

	return c.redisClient.ZRem(ctx, key, members...).Err()
}

func (c *client) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	return c.redisClient.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1)).Result()
}

func (c *client) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	return c.redisClient.ZRevRank(ctx, key, member).Uint64()
}
