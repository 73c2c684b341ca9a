package service

import (
	"time"

	"github.com/fsocietystudios/daily-challenge/internal/blob"
	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
	"github.com/fsocietystudios/daily-challenge/pkg/logger"
)

// fakeClock is a manually advanced Clock
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// testCatalog is a small unit→team catalog for tests
func testCatalog() models.Catalog {
	return models.Catalog{
		"A": {"T1", "T2"},
		"B": {"T3"},
	}
}

// testEnv wires every service over a shared in-memory store, the way
// main does in production.
type testEnv struct {
	kv               repository.KVStore
	blob             *blob.MockClient
	clock            *fakeClock
	challengeRepo    repository.ChallengeRepository
	registrationRepo repository.RegistrationRepository
	rateLimitRepo    repository.RateLimitRepository

	registrations RegistrationService
	challenges    ChallengeService
	guesses       GuessService
	leaderboard   LeaderboardService
	rateLimiter   RateLimitService
}

func newTestEnv() *testEnv {
	kv := repository.NewMemoryKV()
	blobClient := blob.NewMockClient()
	clock := newFakeClock()
	log := logger.NewLogger("test")

	challengeRepo := repository.NewChallengeRepository(kv)
	registrationRepo := repository.NewRegistrationRepository(kv)
	rateLimitRepo := repository.NewRateLimitRepository(kv)

	return &testEnv{
		kv:               kv,
		blob:             blobClient,
		clock:            clock,
		challengeRepo:    challengeRepo,
		registrationRepo: registrationRepo,
		rateLimitRepo:    rateLimitRepo,
		registrations:    NewRegistrationService(registrationRepo, testCatalog(), clock, log, nil),
		challenges:       NewChallengeService(challengeRepo, registrationRepo, rateLimitRepo, blobClient, clock, log, nil),
		guesses:          NewGuessService(challengeRepo, clock, nil),
		leaderboard:      NewLeaderboardService(registrationRepo, challengeRepo),
		rateLimiter:      NewRateLimitService(rateLimitRepo, clock, 0, 0),
	}
}
