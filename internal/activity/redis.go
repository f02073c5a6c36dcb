package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/crate/internal/shared"
	"gopkg.in/redis.v5"
)

const redisKeyPrefix = "crate:activity:"

// Redis is a [Recorder] keeping one capped list per client.
type Redis struct {
	client *redis.Client
	max    int
}

// DialRedis connects to the server in cfg and checks it answers PING.
func DialRedis(cfg shared.RedisConfig, max int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis at %s: %v", shared.ErrServiceUnavailable, cfg.Addr, err)
	}

	return NewRedis(client, max), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, max int) *Redis {
	return &Redis{client: client, max: capOrDefault(max)}
}

func key(client string) string {
	return redisKeyPrefix + client
}

func (r *Redis) Record(_ context.Context, client string, e Entry) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode activity: %w", err)
	}

	k := key(client)
	if err := r.client.LPush(k, string(value)).Err(); err != nil {
		return fmt.Errorf("failed to push activity: %w", err)
	}
	if err := r.client.LTrim(k, 0, int64(r.max-1)).Err(); err != nil {
		return fmt.Errorf("failed to trim activity: %w", err)
	}
	return nil
}

func (r *Redis) Recent(_ context.Context, client string, n int) ([]Entry, error) {
	values, err := r.client.LRange(key(client), 0, int64(limit(n, r.max)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity: %w", err)
	}

	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("%w: activity entry: %v", shared.ErrMalformedInput, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
