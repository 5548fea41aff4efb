package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis implements Store on a Redis backend, for deployments where
// session state should survive the local filesystem (kiosk terminals,
// shared photographer workstations). Keys are namespaced by prefix so
// several installations can share one instance.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store. The prefix is prepended to
// every key; empty means "fotofair:session".
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "fotofair:session"
	}

	log.Debug().Str("prefix", prefix).Msg("redis store initialized")

	return &Redis{client: client, prefix: prefix}
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+":"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}

	return value, nil
}

// Set writes value under key with no expiry; the session manager owns
// teardown and deletes keys explicitly.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+":"+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	return nil
}

// Delete removes key. Absent keys are ignored.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+":"+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}

	return nil
}
