package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisTimeout bounds every call so the store stays effectively synchronous.
const redisTimeout = 2 * time.Second

// RedisConfig holds configuration for the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key.
	Prefix string
}

// RedisStore implements Store on a remote Redis instance.
type RedisStore struct {
	rdb     *redis.Client
	cfg     RedisConfig
	enabled bool
}

// NewRedisStore creates a Redis-backed store. The connection is verified in Init.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{rdb: rdb, cfg: cfg, enabled: true}
}

// Init pings the server. On failure the store is disabled.
func (r *RedisStore) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.rdb.Ping(ctx).Err(); err != nil {
		r.enabled = false
		log.Warn().Err(err).Str("addr", r.cfg.Addr).Msg("redis store disabled")
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *RedisStore) key(k string) string {
	return r.cfg.Prefix + k
}

// Load returns the value stored under key.
func (r *RedisStore) Load(key string) (string, bool, error) {
	if !r.enabled {
		return "", false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	value, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}

	return value, true, nil
}

// Save stores value under key without expiry.
func (r *RedisStore) Save(key, value string) error {
	if !r.enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (r *RedisStore) Delete(key string) error {
	if !r.enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}

	return nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
