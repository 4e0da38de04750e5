package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrMiss = errors.New("cache miss")

// KV 缓存使用的键值存储；键不含命名空间前缀
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DeleteMatching 删除匹配 glob 模式的所有键，返回删除数量
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}

const scanBatch = 200

// RedisKV Redis 实现，所有键加上 namespace 前缀，多个工具共用一个 Redis 时互不干扰
type RedisKV struct {
	c         *redis.Client
	namespace string
}

func NewRedisKV(c *redis.Client, namespace string) *RedisKV {
	return &RedisKV{c: c, namespace: namespace}
}

func (r *RedisKV) key(k string) string { return r.namespace + k }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *RedisKV) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.c.Del(ctx, full...).Err()
}

// DeleteMatching 按 SCAN 批次删除；SCAN 期间新写入的键可能不在本次删除范围内
func (r *RedisKV) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, r.key(pattern), scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := r.c.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
