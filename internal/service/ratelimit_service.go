package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
)

const (
	// DefaultRateLimitThreshold is the number of attempts allowed per key
	// within one window
	DefaultRateLimitThreshold = 3

	// DefaultRateLimitWindow is the rolling window after which a counter
	// is treated as expired
	DefaultRateLimitWindow = 24 * time.Hour
)

type RateLimitService interface {
	// CheckAndIncrement consumes one attempt for key. It returns false,
	// without incrementing, once the threshold is reached inside the
	// window. Expiry is purely time-based on read; there is no reset
	// operation.
	CheckAndIncrement(ctx context.Context, key string) (bool, error)
}

type rateLimitService struct {
	repo      repository.RateLimitRepository
	clock     Clock
	threshold int
	window    time.Duration
}

// NewRateLimitService creates a rate limiter. Zero threshold or window
// fall back to the defaults.
func NewRateLimitService(repo repository.RateLimitRepository, clock Clock, threshold int, window time.Duration) RateLimitService {
	if threshold <= 0 {
		threshold = DefaultRateLimitThreshold
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &rateLimitService{
		repo:      repo,
		clock:     clock,
		threshold: threshold,
		window:    window,
	}
}

func (s *rateLimitService) CheckAndIncrement(ctx context.Context, key string) (bool, error) {
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit for %q: %w", key, err)
	}

	count := 0
	if entry != nil && s.clock.Now().Sub(entry.WindowStart) < s.window {
		count = entry.Count
	}

	if count >= s.threshold {
		return false, nil
	}

	updated := &models.RateLimitEntry{
		Count:       count + 1,
		WindowStart: s.clock.Now(),
	}
	if err := s.repo.Set(ctx, key, updated); err != nil {
		return false, fmt.Errorf("failed to persist rate limit for %q: %w", key, err)
	}
	return true, nil
}
