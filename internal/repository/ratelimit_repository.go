package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fsocietystudios/daily-challenge/internal/models"
)

const keyRateLimits = "rate_limits"

// RateLimitRepository persists per-key attempt counters. Window expiry is
// not the repository's concern; entries are returned as stored and the
// service decides whether they are stale.
type RateLimitRepository interface {
	// Get returns the entry for key, nil when absent
	Get(ctx context.Context, key string) (*models.RateLimitEntry, error)
	Set(ctx context.Context, key string, entry *models.RateLimitEntry) error
	EraseAll(ctx context.Context) error
}

type rateLimitRepository struct {
	kv KVStore
}

// NewRateLimitRepository creates a rate-limit repository over a KVStore
func NewRateLimitRepository(kv KVStore) RateLimitRepository {
	return &rateLimitRepository{kv: kv}
}

func (r *rateLimitRepository) Get(ctx context.Context, key string) (*models.RateLimitEntry, error) {
	fields, err := r.kv.GetHash(ctx, keyRateLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate limits: %w", err)
	}

	data, ok := fields[key]
	if !ok {
		return nil, nil
	}

	var entry models.RateLimitEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate limit entry %q: %w", key, err)
	}
	return &entry, nil
}

func (r *rateLimitRepository) Set(ctx context.Context, key string, entry *models.RateLimitEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit entry %q: %w", key, err)
	}

	if err := r.kv.SetHashField(ctx, keyRateLimits, key, string(data)); err != nil {
		return fmt.Errorf("failed to persist rate limit entry %q: %w", key, err)
	}
	return nil
}

func (r *rateLimitRepository) EraseAll(ctx context.Context) error {
	if err := r.kv.Delete(ctx, keyRateLimits); err != nil {
		return fmt.Errorf("failed to erase rate limits: %w", err)
	}
	return nil
}
