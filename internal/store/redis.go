package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Values returns the view of one scope; every write refreshes the scope's ttl.
func (r *Redis) Values(scope string, ttl time.Duration) *RedisValues {
	return &RedisValues{client: r.Client, key: "teacherdash:session:" + scope, ttl: ttl}
}

// Close closes the client.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// RedisValues keeps one scope as a redis hash.
type RedisValues struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// Get returns "" for a missing key.
func (v *RedisValues) Get(ctx context.Context, field string) (string, error) {
	val, err := v.client.HGet(ctx, v.key, field).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (v *RedisValues) Set(ctx context.Context, field, value string) error {
	pipe := v.client.TxPipeline()
	pipe.HSet(ctx, v.key, field, value)
	if v.ttl > 0 {
		pipe.Expire(ctx, v.key, v.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (v *RedisValues) Delete(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return v.client.HDel(ctx, v.key, fields...).Err()
}
