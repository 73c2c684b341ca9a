package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fsocietystudios/daily-challenge/internal/models"
)

const (
	keyChallenges       = "challenges"
	keyCurrentChallenge = "challenge:current"
)

// ChallengeRepository persists challenges. The current challenge is a
// denormalized copy of one collection entry; Save writes both together so
// readers of the pointer never observe a state the collection does not
// have (the reverse is still racy, see the service-level notes).
type ChallengeRepository interface {
	Save(ctx context.Context, challenge *models.Challenge, markCurrent bool) error
	GetCurrent(ctx context.Context) (*models.Challenge, error)
	List(ctx context.Context) ([]*models.Challenge, error)
	EraseAll(ctx context.Context) error
}

type challengeRepository struct {
	kv KVStore
}

// NewChallengeRepository creates a challenge repository over a KVStore
func NewChallengeRepository(kv KVStore) ChallengeRepository {
	return &challengeRepository{kv: kv}
}

func (r *challengeRepository) Save(ctx context.Context, challenge *models.Challenge, markCurrent bool) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge %s: %w", challenge.ID, err)
	}

	if err := r.kv.SetHashField(ctx, keyChallenges, challenge.ID, string(data)); err != nil {
		return fmt.Errorf("failed to persist challenge %s: %w", challenge.ID, err)
	}

	if markCurrent {
		if err := r.kv.SetString(ctx, keyCurrentChallenge, string(data)); err != nil {
			return fmt.Errorf("failed to persist current challenge pointer: %w", err)
		}
	}

	return nil
}

func (r *challengeRepository) GetCurrent(ctx context.Context) (*models.Challenge, error) {
	data, err := r.kv.GetString(ctx, keyCurrentChallenge)
	if err != nil {
		return nil, fmt.Errorf("failed to read current challenge: %w", err)
	}
	if data == "" {
		return nil, nil
	}

	var challenge models.Challenge
	if err := json.Unmarshal([]byte(data), &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal current challenge: %w", err)
	}
	return &challenge, nil
}

func (r *challengeRepository) List(ctx context.Context) ([]*models.Challenge, error) {
	fields, err := r.kv.GetHash(ctx, keyChallenges)
	if err != nil {
		return nil, fmt.Errorf("failed to read challenges: %w", err)
	}

	challenges := make([]*models.Challenge, 0, len(fields))
	for id, data := range fields {
		var challenge models.Challenge
		if err := json.Unmarshal([]byte(data), &challenge); err != nil {
			return nil, fmt.Errorf("failed to unmarshal challenge %s: %w", id, err)
		}
		challenges = append(challenges, &challenge)
	}
	return challenges, nil
}

func (r *challengeRepository) EraseAll(ctx context.Context) error {
	if err := r.kv.Delete(ctx, keyChallenges); err != nil {
		return fmt.Errorf("failed to erase challenges: %w", err)
	}
	if err := r.kv.Delete(ctx, keyCurrentChallenge); err != nil {
		return fmt.Errorf("failed to erase current challenge pointer: %w", err)
	}
	return nil
}
