package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
)

type LeaderboardService interface {
	Compute(ctx context.Context) (*models.Leaderboard, error)
}

type leaderboardService struct {
	registrationRepo repository.RegistrationRepository
	challengeRepo    repository.ChallengeRepository
}

func NewLeaderboardService(registrationRepo repository.RegistrationRepository, challengeRepo repository.ChallengeRepository) LeaderboardService {
	return &leaderboardService{
		registrationRepo: registrationRepo,
		challengeRepo:    challengeRepo,
	}
}

// Compute folds every guess of every challenge into per-participant
// accumulators seeded from the registrations, then derives the unit and
// sub-team groupings from the same accumulators. Guesses that reference
// an unknown participant are skipped: they cannot be attributed to a
// unit or team, and the leaderboard must degrade rather than fail.
func (s *leaderboardService) Compute(ctx context.Context) (*models.Leaderboard, error) {
	registrations, err := s.registrationRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	challenges, err := s.challengeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenges: %w", err)
	}

	// Accumulators in registration order; every registrant appears even
	// with zero guesses.
	entries := make([]models.LeaderboardEntry, 0, len(registrations))
	index := make(map[string]int, len(registrations))
	for _, reg := range registrations {
		index[reg.ParticipantID] = len(entries)
		entries = append(entries, models.LeaderboardEntry{
			ParticipantID: reg.ParticipantID,
			Name:          reg.Name,
			Unit:          reg.Unit,
			Team:          reg.Team,
		})
	}

	for _, challenge := range challenges {
		for _, guess := range challenge.Guesses {
			i, ok := index[guess.ParticipantID]
			if !ok {
				continue
			}
			entries[i].TotalGuesses++
			if guess.IsCorrect {
				entries[i].CorrectGuesses++
			}
		}
	}

	overall := make([]models.LeaderboardEntry, len(entries))
	copy(overall, entries)
	sort.SliceStable(overall, func(i, j int) bool {
		return overall[i].CorrectGuesses > overall[j].CorrectGuesses
	})

	return &models.Leaderboard{
		Overall: overall,
		ByUnit:  groupBy(entries, func(e models.LeaderboardEntry) string { return e.Unit }),
		ByTeam:  groupBy(entries, func(e models.LeaderboardEntry) string { return e.Team }),
	}, nil
}

// groupBy aggregates the accumulators by the given key, preserving first
// appearance order. Groups with no registrants never show up because
// groups only exist through their members.
func groupBy(entries []models.LeaderboardEntry, key func(models.LeaderboardEntry) string) []models.GroupStanding {
	order := make([]string, 0)
	groups := make(map[string]*models.GroupStanding)

	for _, entry := range entries {
		k := key(entry)
		standing, ok := groups[k]
		if !ok {
			standing = &models.GroupStanding{Name: k}
			groups[k] = standing
			order = append(order, k)
		}
		standing.Users++
		standing.CorrectGuesses += entry.CorrectGuesses
		standing.TotalGuesses += entry.TotalGuesses
	}

	out := make([]models.GroupStanding, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}
