package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fsocietystudios/daily-challenge/internal/models"
)

const keyRegistrations = "registrations"

// RegistrationRepository persists the flat registrations collection.
// There is no per-record update primitive: callers read the whole
// collection, mutate it and write it back.
type RegistrationRepository interface {
	GetAll(ctx context.Context) ([]*models.Registration, error)
	SaveAll(ctx context.Context, registrations []*models.Registration) error
	EraseAll(ctx context.Context) error
}

type registrationRepository struct {
	kv KVStore
}

// NewRegistrationRepository creates a registration repository over a KVStore
func NewRegistrationRepository(kv KVStore) RegistrationRepository {
	return &registrationRepository{kv: kv}
}

func (r *registrationRepository) GetAll(ctx context.Context) ([]*models.Registration, error) {
	data, err := r.kv.GetString(ctx, keyRegistrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read registrations: %w", err)
	}
	if data == "" {
		return []*models.Registration{}, nil
	}

	var registrations []*models.Registration
	if err := json.Unmarshal([]byte(data), &registrations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registrations: %w", err)
	}
	return registrations, nil
}

func (r *registrationRepository) SaveAll(ctx context.Context, registrations []*models.Registration) error {
	data, err := json.Marshal(registrations)
	if err != nil {
		return fmt.Errorf("failed to marshal registrations: %w", err)
	}

	if err := r.kv.SetString(ctx, keyRegistrations, string(data)); err != nil {
		return fmt.Errorf("failed to persist registrations: %w", err)
	}
	return nil
}

func (r *registrationRepository) EraseAll(ctx context.Context) error {
	if err := r.kv.Delete(ctx, keyRegistrations); err != nil {
		return fmt.Errorf("failed to erase registrations: %w", err)
	}
	return nil
}
