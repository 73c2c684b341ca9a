package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KVStore is the key-value persistence collaborator every repository is
// built on. Missing keys read as zero values, never as errors.
type KVStore interface {
	// GetHash returns every field of a hash key, empty map when absent
	GetHash(ctx context.Context, key string) (map[string]string, error)

	// SetHashField writes one field of a hash key
	SetHashField(ctx context.Context, key, field, value string) error

	// GetString returns a plain string key, "" when absent
	GetString(ctx context.Context, key string) (string, error)

	// SetString writes a plain string key
	SetString(ctx context.Context, key, value string) error

	// Delete removes a key of any type
	Delete(ctx context.Context, key string) error
}

type redisKV struct {
	client *redis.Client
}

// NewRedisKV creates a KVStore backed by a Redis client
func NewRedisKV(client *redis.Client) KVStore {
	return &redisKV{client: client}
}

func (r *redisKV) GetHash(ctx context.Context, key string) (map[string]string, error) {
	val, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get hash %q: %w", key, err)
	}
	return val, nil
}

func (r *redisKV) SetHashField(ctx context.Context, key, field, value string) error {
	if err := r.client.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("failed to set hash field %q.%q: %w", key, field, err)
	}
	return nil
}

func (r *redisKV) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return val, nil
}

func (r *redisKV) SetString(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

func (r *redisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}
