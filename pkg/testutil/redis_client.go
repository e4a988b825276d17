package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

type MockRedisClient struct {
	ExistFunc               func(ctx context.Context, key string) (bool, error)
	DelFunc                 func(ctx context.Context, key ...string) error
	ZAddFunc                func(ctx context.Context, key string, z ...redis.Z) error
	ZRemFunc                func(ctx context.Context, key string, member ...string) error
	ZRevRangeWithScoresFunc func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
	ZRevRankFunc            func(ctx context.Context, key string, member string) (uint64, error)
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, key...)
	}

	return nil
}

func (m *MockRedisClient) ZAdd(ctx context.Context, key string, z ...redis.Z) error {
	if m.ZAddFunc != nil {
		return m.ZAddFunc(ctx, key, z...)
	}

	return nil
}

func (m *MockRedisClient) ZRem(ctx context.Context, key string, member ...string) error {
	if m.ZRemFunc != nil {
		return m.ZRemFunc(ctx, key, member...)
	}

	return nil
}

func (m *MockRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	if m.ZRevRangeWithScoresFunc != nil {
		return m.ZRevRangeWithScoresFunc(ctx, key, offset, limit)
	}

	return nil, nil
}

func (m *MockRedisClient) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	if m.ZRevRankFunc != nil {
		return m.ZRevRankFunc(ctx, key, member)
	}

	return 0, redis.Nil
}

// MemoryRedisClient is an in-memory sorted set store.
type MemoryRedisClient struct {
	mutex sync.Mutex
	sets  map[string]map[string]float64
}

func NewMemoryRedisClient() *MemoryRedisClient {
	return &MemoryRedisClient{sets: make(map[string]map[string]float64)}
}

func (c *MemoryRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.sets[key]
	return ok, nil
}

func (c *MemoryRedisClient) Del(ctx context.Context, key ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, k := range key {
		delete(c.sets, k)
	}

	return nil
}

func (c *MemoryRedisClient) ZAdd(ctx context.Context, key string, z ...redis.Z) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	set := c.getOrCreate(key)
	for _, item := range z {
		member, ok := item.Member.(string)
		if !ok {
			return errors.New("member must be a string")
		}

		set[member] = item.Score
	}

	return nil
}

func (c *MemoryRedisClient) ZRem(ctx context.Context, key string, member ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	set, ok := c.sets[key]
	if !ok {
		return nil
	}

	for _, m := range member {
		delete(set, m)
	}

	return nil
}

func (c *MemoryRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	sorted := c.sorted(key)
	if offset >= len(sorted) {
		return []redis.Z{}, nil
	}

	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}

	return sorted[offset:end], nil
}

func (c *MemoryRedisClient) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	for i, z := range c.sorted(key) {
		if z.Member.(string) == member {
			return uint64(i), nil
		}
	}

	return 0, redis.Nil
}

func (c *MemoryRedisClient) getOrCreate(key string) map[string]float64 {
	set, ok := c.sets[key]
	if !ok {
		set = make(map[string]float64)
		c.sets[key] = set
	}

	return set
}

func (c *MemoryRedisClient) sorted(key string) []redis.Z {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	result := []redis.Z{}
	for member, score := range c.sets[key] {
		result = append(result, redis.Z{Member: member, Score: score})
	}

	// Same order as redis: score descending, then member descending.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}

		return result[i].Member.(string) > result[j].Member.(string)
	})

	return result
}
