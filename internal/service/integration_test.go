package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsocietystudios/daily-challenge/internal/models"
)

// TestDailyChallengeFlow drives a full day of the service end to end:
// publish, register, approve, guess, repeat-guess, leaderboard, erase.
func TestDailyChallengeFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	// Admin publishes the challenge
	_, err := env.challenges.Create(ctx, testImage, []string{"paris", "Paris"}, "Capital of France?")
	require.NoError(t, err)

	// Participant registers and gets approved
	reg, err := env.registrations.Submit(ctx, "Dana", "A", "T1")
	require.NoError(t, err)
	_, err = env.registrations.UpdateStatus(ctx, reg.ParticipantID, models.StatusApproved)
	require.NoError(t, err)

	approved, err := env.registrations.IsApproved(ctx, reg.ParticipantID)
	require.NoError(t, err)
	require.True(t, approved)

	// First guess is correct regardless of case
	result, err := env.guesses.Submit(ctx, reg.ParticipantID, reg.Name, "PARIS")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.False(t, result.AlreadySubmitted)

	// Second guess short-circuits
	result, err = env.guesses.Submit(ctx, reg.ParticipantID, reg.Name, "paris")
	require.NoError(t, err)
	assert.True(t, result.AlreadySubmitted)

	// Leaderboard shows exactly one correct guess for the participant
	board, err := env.leaderboard.Compute(ctx)
	require.NoError(t, err)
	require.Len(t, board.Overall, 1)
	assert.Equal(t, reg.ParticipantID, board.Overall[0].ParticipantID)
	assert.Equal(t, 1, board.Overall[0].CorrectGuesses)
	assert.Equal(t, 1, board.Overall[0].TotalGuesses)

	require.Len(t, board.ByUnit, 1)
	assert.Equal(t, "A", board.ByUnit[0].Name)
	assert.Equal(t, 1, board.ByUnit[0].CorrectGuesses)

	// Global erase returns the service to its initial state
	require.NoError(t, env.challenges.EraseAll(ctx))

	current, err := env.challenges.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	board, err = env.leaderboard.Compute(ctx)
	require.NoError(t, err)
	assert.Empty(t, board.Overall)
}
