package store

import (
	"context"
	errs "errors"

	"github.com/redis/go-redis/v9"

	"github.com/DaanHessen/fanlife/internal/util"
)

const redisPrefix = "fanlife:save:"

// RedisBackend stores each save as a plain string value.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(ctx context.Context, cfg util.Config) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, wrap(err, "ping redis")
	}
	return &RedisBackend{client: client}, nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if errs.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap(err, "redis get")
	}
	return raw, nil
}

func (r *RedisBackend) Put(ctx context.Context, key string, payload []byte) error {
	return wrap(r.client.Set(ctx, redisPrefix+key, payload, 0).Err(), "redis set")
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return wrap(r.client.Del(ctx, redisPrefix+key).Err(), "redis del")
}

func (r *RedisBackend) Close() error { return r.client.Close() }
