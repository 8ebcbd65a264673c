package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisPrefs keeps preferences in redis under a key prefix, for deployments where several
// server instances share one prefill.
type RedisPrefs struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redis and checks the connection.
func NewRedis(ctx context.Context, opts *redis.Options, prefix string) (*RedisPrefs, error) {
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return &RedisPrefs{client: c, prefix: prefix}, nil
}

func (r *RedisPrefs) key(k string) string { return r.prefix + k }

func (r *RedisPrefs) GetPref(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pref %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisPrefs) SetPref(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set pref %s: %w", key, err)
	}
	return nil
}

func (r *RedisPrefs) DeletePref(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("delete pref %s: %w", key, err)
	}
	return nil
}

// ListPrefs returns every preference under the prefix, keyed without it.
func (r *RedisPrefs) ListPrefs(ctx context.Context) (map[string]string, error) {
	prefs := map[string]string{}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		v, err := r.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list prefs: %w", err)
		}
		prefs[strings.TrimPrefix(k, r.prefix)] = v
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list prefs: %w", err)
	}
	return prefs, nil
}

func (r *RedisPrefs) Close() error {
	return r.client.Close()
}
