package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Store is the raw key/value backend behind a Gateway. MGet returns one slot per
// key, nil for a miss.
type Store interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return [][]byte{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	result := make([][]byte, len(keys))
	for i, v := range values {
		switch val := v.(type) {
		case string:
			result[i] = []byte(val)
		case []byte:
			result[i] = val
		}
	}
	return result, nil
}

func (s *RedisStore) Set(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for key, value := range entries {
		pipe.Set(ctx, key, value, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// MemoryStore is a bounded in-process store for single-instance deployments and
// tests. Entries expire after the TTL given at construction.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 1
	}
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (s *MemoryStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	result := make([][]byte, len(keys))
	for i, key := range keys {
		if value, ok := s.lru.Get(key); ok {
			result[i] = value
		}
	}
	return result, nil
}

func (s *MemoryStore) Set(_ context.Context, entries map[string][]byte, _ time.Duration) error {
	for key, value := range entries {
		s.lru.Add(key, value)
	}
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.lru.Remove(key)
	}
	return nil
}
