package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsocietystudios/daily-challenge/internal/blob"
	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
	"github.com/fsocietystudios/daily-challenge/pkg/helpers"
	"github.com/fsocietystudios/daily-challenge/pkg/logger"
	"github.com/fsocietystudios/daily-challenge/pkg/metrics"
)

var (
	ErrEmptyAnswerSet = errors.New("challenge needs at least one accepted answer")
	ErrEmptyImage     = errors.New("challenge needs an image")
)

type ChallengeService interface {
	Create(ctx context.Context, image []byte, acceptedAnswers []string, question string) (*models.Challenge, error)
	Current(ctx context.Context) (*models.Challenge, error)
	List(ctx context.Context) ([]*models.Challenge, error)
	EraseAll(ctx context.Context) error
}

type challengeService struct {
	challengeRepo    repository.ChallengeRepository
	registrationRepo repository.RegistrationRepository
	rateLimitRepo    repository.RateLimitRepository
	blobClient       blob.Client
	ids              *helpers.IDGenerator
	clock            Clock
	log              *logger.Logger
	metrics          *metrics.Metrics
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepository,
	registrationRepo repository.RegistrationRepository,
	rateLimitRepo repository.RateLimitRepository,
	blobClient blob.Client,
	clock Clock,
	log *logger.Logger,
	m *metrics.Metrics,
) ChallengeService {
	return &challengeService{
		challengeRepo:    challengeRepo,
		registrationRepo: registrationRepo,
		rateLimitRepo:    rateLimitRepo,
		blobClient:       blobClient,
		ids:              helpers.NewIDGenerator(),
		clock:            clock,
		log:              log,
		metrics:          m,
	}
}

// Create publishes a new challenge and installs it as current. The
// superseded challenge stays in the collection for the history view.
func (s *challengeService) Create(ctx context.Context, image []byte, acceptedAnswers []string, question string) (challenge *models.Challenge, err error) {
	done := s.metrics.Begin("create_challenge")
	defer func() { done(err) }()

	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if len(acceptedAnswers) == 0 {
		return nil, ErrEmptyAnswerSet
	}

	imageRef, err := s.blobClient.UploadImage(image)
	if err != nil {
		return nil, fmt.Errorf("failed to store challenge image: %w", err)
	}

	challenge = &models.Challenge{
		ID:              s.ids.GenerateUUID(),
		ImageRef:        imageRef,
		AcceptedAnswers: acceptedAnswers,
		Question:        strings.TrimSpace(question),
		Guesses:         []models.Guess{},
		CreatedAt:       s.clock.Now(),
	}

	if err := s.challengeRepo.Save(ctx, challenge, true); err != nil {
		return nil, fmt.Errorf("failed to persist challenge: %w", err)
	}

	s.log.WithField("challenge_id", challenge.ID).Info("challenge created")
	return challenge, nil
}

func (s *challengeService) Current(ctx context.Context) (*models.Challenge, error) {
	return s.challengeRepo.GetCurrent(ctx)
}

func (s *challengeService) List(ctx context.Context) ([]*models.Challenge, error) {
	return s.challengeRepo.List(ctx)
}

// EraseAll wipes every challenge, guess, registration and rate-limit
// counter, and deletes the stored images. Image deletion is best-effort:
// a storage-provider failure on one image is logged and must not block
// the wipe. The wipe itself is not transactional across collections.
func (s *challengeService) EraseAll(ctx context.Context) (err error) {
	done := s.metrics.Begin("erase_all")
	defer func() { done(err) }()

	challenges, err := s.challengeRepo.List(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to list challenges before erase, stored images may be orphaned")
	}
	for _, challenge := range challenges {
		if challenge.ImageRef == "" {
			continue
		}
		if err := s.blobClient.DeleteImage(challenge.ImageRef); err != nil {
			s.log.WithError(err).WithField("image", challenge.ImageRef).Warn("failed to delete challenge image")
		}
	}

	if err := s.challengeRepo.EraseAll(ctx); err != nil {
		return fmt.Errorf("failed to erase challenges: %w", err)
	}
	if err := s.registrationRepo.EraseAll(ctx); err != nil {
		return fmt.Errorf("failed to erase registrations: %w", err)
	}
	if err := s.rateLimitRepo.EraseAll(ctx); err != nil {
		return fmt.Errorf("failed to erase rate limits: %w", err)
	}

	s.log.Info("all challenge data erased")
	return nil
}
