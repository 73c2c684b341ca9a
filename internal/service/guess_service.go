package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
	"github.com/fsocietystudios/daily-challenge/pkg/metrics"
)

var ErrNoActiveChallenge = errors.New("no active challenge")

// GuessResult is the outcome of one submission attempt. AlreadySubmitted
// means the participant had guessed before and nothing was recorded.
type GuessResult struct {
	IsCorrect        bool `json:"is_correct"`
	AlreadySubmitted bool `json:"already_submitted"`
}

type GuessService interface {
	Submit(ctx context.Context, participantID, name, text string) (*GuessResult, error)
}

type guessService struct {
	challengeRepo repository.ChallengeRepository
	clock         Clock
	metrics       *metrics.Metrics
}

func NewGuessService(challengeRepo repository.ChallengeRepository, clock Clock, m *metrics.Metrics) GuessService {
	return &guessService{
		challengeRepo: challengeRepo,
		clock:         clock,
		metrics:       m,
	}
}

// Submit records one guess against the current challenge. A participant's
// guess state is terminal: once submitted, repeat calls short-circuit
// without touching storage.
func (s *guessService) Submit(ctx context.Context, participantID, name, text string) (result *GuessResult, err error) {
	done := s.metrics.Begin("submit_guess")
	defer func() { done(err) }()

	participantID = strings.TrimSpace(participantID)
	name = strings.TrimSpace(name)
	if participantID == "" || name == "" || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: participant ID, name and guess are required", ErrInvalidInput)
	}

	challenge, err := s.challengeRepo.GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current challenge: %w", err)
	}
	if challenge == nil {
		return nil, ErrNoActiveChallenge
	}

	if challenge.HasGuessFrom(participantID) {
		return &GuessResult{AlreadySubmitted: true}, nil
	}

	isCorrect := matchesAny(text, challenge.AcceptedAnswers)

	challenge.Guesses = append(challenge.Guesses, models.Guess{
		ParticipantID:   participantID,
		ParticipantName: name,
		Text:            text,
		Timestamp:       s.clock.Now(),
		IsCorrect:       isCorrect,
	})

	// The loaded challenge is the current one, so the save rewrites the
	// collection entry and the current pointer together.
	if err := s.challengeRepo.Save(ctx, challenge, true); err != nil {
		return nil, fmt.Errorf("failed to persist guess: %w", err)
	}

	return &GuessResult{IsCorrect: isCorrect}, nil
}

// matchesAny compares the guess against every accepted answer after
// normalization. Exact match only, no partial credit.
func matchesAny(guess string, acceptedAnswers []string) bool {
	normalized := normalizeAnswer(guess)
	for _, answer := range acceptedAnswers {
		if accepted := normalizeAnswer(answer); accepted != "" && accepted == normalized {
			return true
		}
	}
	return false
}

// normalizeAnswer trims whitespace and case-folds; answers are stored
// verbatim and only compared in normalized form.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
