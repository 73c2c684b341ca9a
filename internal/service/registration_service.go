package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
	"github.com/fsocietystudios/daily-challenge/pkg/helpers"
	"github.com/fsocietystudios/daily-challenge/pkg/logger"
	"github.com/fsocietystudios/daily-challenge/pkg/metrics"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidCategory       = errors.New("team does not belong to the given unit")
	ErrDuplicateRegistration = errors.New("registration already exists")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrInvalidStatus         = errors.New("status must be approved or rejected")
)

const (
	// maxIDAttempts bounds the participant-ID uniqueness retry loop
	maxIDAttempts = 10

	// idRetryDelay lets the timestamp-derived digest diverge between attempts
	idRetryDelay = 2 * time.Millisecond

	// idFallbackSuffixLen is the random suffix length appended when the
	// retry loop exhausts its attempts
	idFallbackSuffixLen = 4
)

type RegistrationService interface {
	Submit(ctx context.Context, name, unit, team string) (*models.Registration, error)
	List(ctx context.Context) ([]*models.Registration, error)
	Get(ctx context.Context, participantID string) (*models.Registration, error)
	UpdateStatus(ctx context.Context, participantID string, status models.RegistrationStatus) (*models.Registration, error)
	IsApproved(ctx context.Context, participantID string) (bool, error)
}

// idGenerator is the slice of helpers.IDGenerator the service needs;
// narrowed to an interface so tests can force collisions.
type idGenerator interface {
	GenerateParticipantID(unit, team string) string
	GenerateCode(length int) string
}

type registrationService struct {
	repo     repository.RegistrationRepository
	catalog  models.Catalog
	validate *helpers.CustomValidator
	ids      idGenerator
	clock    Clock
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewRegistrationService(repo repository.RegistrationRepository, catalog models.Catalog, clock Clock, log *logger.Logger, m *metrics.Metrics) RegistrationService {
	return &registrationService{
		repo:     repo,
		catalog:  catalog,
		validate: helpers.NewCustomValidator(),
		ids:      helpers.NewIDGenerator(),
		clock:    clock,
		log:      log,
		metrics:  m,
	}
}

type registrationInput struct {
	Name string `validate:"required,notblank,max=100"`
	Unit string `validate:"required,notblank,max=100"`
	Team string `validate:"required,notblank,max=100"`
}

func (s *registrationService) Submit(ctx context.Context, name, unit, team string) (reg *models.Registration, err error) {
	done := s.metrics.Begin("submit_registration")
	defer func() { done(err) }()

	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	team = strings.TrimSpace(team)

	if err := s.validate.Validate(registrationInput{Name: name, Unit: unit, Team: team}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if !s.catalog.Valid(unit, team) {
		return nil, ErrInvalidCategory
	}

	registrations, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	for _, existing := range registrations {
		if existing.Name == name && existing.Unit == unit && existing.Team == team {
			return nil, ErrDuplicateRegistration
		}
	}

	participantID := s.generateUniqueID(unit, team, registrations)

	reg = &models.Registration{
		ParticipantID: participantID,
		Name:          name,
		Unit:          unit,
		Team:          team,
		Status:        models.StatusPending,
		Timestamp:     s.clock.Now(),
	}

	registrations = append(registrations, reg)
	if err := s.repo.SaveAll(ctx, registrations); err != nil {
		return nil, fmt.Errorf("failed to persist registration: %w", err)
	}

	s.log.WithParticipantID(participantID).Info("registration submitted")
	return reg, nil
}

// generateUniqueID retries digest generation until the token is unused,
// sleeping between attempts so the timestamp seed diverges. After the
// attempt bound it appends a random suffix, which guarantees termination
// but not strict uniqueness under concurrent bursts; that residual race
// is accepted (there is no atomic reservation step in the store).
func (s *registrationService) generateUniqueID(unit, team string, registrations []*models.Registration) string {
	taken := make(map[string]struct{}, len(registrations))
	for _, r := range registrations {
		taken[r.ParticipantID] = struct{}{}
	}

	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(idRetryDelay)
		}
		id = s.ids.GenerateParticipantID(unit, team)
		if _, exists := taken[id]; !exists {
			return id
		}
	}

	id = id + "-" + s.ids.GenerateCode(idFallbackSuffixLen)
	s.log.WithParticipantID(id).Warn("participant ID retry loop exhausted, appended random suffix")
	return id
}

func (s *registrationService) List(ctx context.Context) ([]*models.Registration, error) {
	return s.repo.GetAll(ctx)
}

func (s *registrationService) Get(ctx context.Context, participantID string) (*models.Registration, error) {
	registrations, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	for _, reg := range registrations {
		if reg.ParticipantID == participantID {
			return reg, nil
		}
	}
	return nil, ErrRegistrationNotFound
}

func (s *registrationService) UpdateStatus(ctx context.Context, participantID string, status models.RegistrationStatus) (reg *models.Registration, err error) {
	done := s.metrics.Begin("update_registration_status")
	defer func() { done(err) }()

	if !status.IsDecision() {
		return nil, ErrInvalidStatus
	}

	registrations, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	for _, existing := range registrations {
		if existing.ParticipantID == participantID {
			existing.Status = status
			if err := s.repo.SaveAll(ctx, registrations); err != nil {
				return nil, fmt.Errorf("failed to persist registrations: %w", err)
			}
			s.log.WithParticipantID(participantID).WithField("status", status).Info("registration status updated")
			return existing, nil
		}
	}

	return nil, ErrRegistrationNotFound
}

func (s *registrationService) IsApproved(ctx context.Context, participantID string) (bool, error) {
	registrations, err := s.repo.GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load registrations: %w", err)
	}

	for _, reg := range registrations {
		if reg.ParticipantID == participantID {
			return reg.Status == models.StatusApproved, nil
		}
	}
	return false, nil
}
