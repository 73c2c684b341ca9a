package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsocietystudios/daily-challenge/internal/blob"
	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
	"github.com/fsocietystudios/daily-challenge/internal/service"
	"github.com/fsocietystudios/daily-challenge/pkg/logger"
)

const adminToken = "test-admin-token"

func newTestServer(t *testing.T) (*httptest.Server, service.RegistrationService) {
	t.Helper()

	kv := repository.NewMemoryKV()
	blobClient := blob.NewMockClient()
	clock := service.SystemClock()
	log := logger.NewLogger("test")

	challengeRepo := repository.NewChallengeRepository(kv)
	registrationRepo := repository.NewRegistrationRepository(kv)
	rateLimitRepo := repository.NewRateLimitRepository(kv)

	catalog := models.Catalog{"A": {"T1", "T2"}, "B": {"T3"}}
	registrations := service.NewRegistrationService(registrationRepo, catalog, clock, log, nil)
	challenges := service.NewChallengeService(challengeRepo, registrationRepo, rateLimitRepo, blobClient, clock, log, nil)
	guesses := service.NewGuessService(challengeRepo, clock, nil)
	leaderboard := service.NewLeaderboardService(registrationRepo, challengeRepo)
	rateLimiter := service.NewRateLimitService(rateLimitRepo, clock, 0, 0)

	mux := http.NewServeMux()
	NewHTTPHandler(challenges, registrations, guesses, leaderboard, rateLimiter, adminToken, log).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, registrations
}

func postJSON(t *testing.T, url string, payload interface{}, headers map[string]string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createChallenge(t *testing.T, serverURL string, answers []string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "challenge.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	require.NoError(t, err)
	for _, a := range answers {
		require.NoError(t, w.WriteField("answer", a))
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/challenge", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Admin-Token", adminToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_Register(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := postJSON(t, server.URL+"/api/register", map[string]string{
			"name": "Dana", "unit": "A", "team": "T1",
		}, map[string]string{"X-Forwarded-For": "10.0.0.1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reg models.Registration
		decode(t, resp, &reg)
		assert.Equal(t, models.StatusPending, reg.Status)
		assert.NotEmpty(t, reg.ParticipantID)
	})

	t.Run("invalid team maps to 400", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := postJSON(t, server.URL+"/api/register", map[string]string{
			"name": "Dana", "unit": "A", "team": "T9",
		}, map[string]string{"X-Forwarded-For": "10.0.0.2"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate maps to 409", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := postJSON(t, server.URL+"/api/register", map[string]string{
			"name": "Dana", "unit": "A", "team": "T1",
		}, map[string]string{"X-Forwarded-For": "10.0.0.3"})
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = postJSON(t, server.URL+"/api/register", map[string]string{
			"name": "Dana", "unit": "A", "team": "T1",
		}, map[string]string{"X-Forwarded-For": "10.0.0.4"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("rate limited after three attempts from one address", func(t *testing.T) {
		server, _ := newTestServer(t)
		headers := map[string]string{"X-Forwarded-For": "10.0.0.5"}

		names := []string{"P1", "P2", "P3"}
		for _, name := range names {
			resp := postJSON(t, server.URL+"/api/register", map[string]string{
				"name": name, "unit": "A", "team": "T1",
			}, headers)
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}

		resp := postJSON(t, server.URL+"/api/register", map[string]string{
			"name": "P4", "unit": "A", "team": "T1",
		}, headers)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})
}

func TestHandler_AdminRoutes(t *testing.T) {
	t.Run("registrations list requires the admin token", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp, err := http.Get(server.URL + "/api/registrations")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("status update round trip", func(t *testing.T) {
		server, registrations := newTestServer(t)

		reg, err := registrations.Submit(context.Background(), "Dana", "A", "T1")
		require.NoError(t, err)

		body, err := json.Marshal(map[string]string{
			"participant_id": reg.ParticipantID,
			"status":         "approved",
		})
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPut, server.URL+"/api/registrations", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("X-Admin-Token", adminToken)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.Registration
		decode(t, resp, &updated)
		assert.Equal(t, models.StatusApproved, updated.Status)
	})
}

func TestHandler_GuessFlow(t *testing.T) {
	t.Run("unapproved participant is forbidden", func(t *testing.T) {
		server, registrations := newTestServer(t)
		createChallenge(t, server.URL, []string{"paris"})

		reg, err := registrations.Submit(context.Background(), "Dana", "A", "T1")
		require.NoError(t, err)

		resp := postJSON(t, server.URL+"/api/challenge/guess", map[string]string{
			"participant_id": reg.ParticipantID, "name": "Dana", "guess": "paris",
		}, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("approved participant guesses once", func(t *testing.T) {
		server, registrations := newTestServer(t)
		createChallenge(t, server.URL, []string{"paris"})

		reg, err := registrations.Submit(context.Background(), "Dana", "A", "T1")
		require.NoError(t, err)
		_, err = registrations.UpdateStatus(context.Background(), reg.ParticipantID, models.StatusApproved)
		require.NoError(t, err)

		resp := postJSON(t, server.URL+"/api/challenge/guess", map[string]string{
			"participant_id": reg.ParticipantID, "name": "Dana", "guess": " PARIS ",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.GuessResult
		decode(t, resp, &result)
		assert.True(t, result.IsCorrect)
		assert.False(t, result.AlreadySubmitted)

		resp = postJSON(t, server.URL+"/api/challenge/guess", map[string]string{
			"participant_id": reg.ParticipantID, "name": "Dana", "guess": "paris",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decode(t, resp, &result)
		assert.True(t, result.AlreadySubmitted)
	})

	t.Run("no active challenge maps to 409", func(t *testing.T) {
		server, registrations := newTestServer(t)

		reg, err := registrations.Submit(context.Background(), "Dana", "A", "T1")
		require.NoError(t, err)
		_, err = registrations.UpdateStatus(context.Background(), reg.ParticipantID, models.StatusApproved)
		require.NoError(t, err)

		resp := postJSON(t, server.URL+"/api/challenge/guess", map[string]string{
			"participant_id": reg.ParticipantID, "name": "Dana", "guess": "paris",
		}, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestHandler_ChallengeAndLeaderboard(t *testing.T) {
	t.Run("current challenge 404 before creation", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp, err := http.Get(server.URL + "/api/challenge")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("current challenge with leaderboard", func(t *testing.T) {
		server, registrations := newTestServer(t)
		createChallenge(t, server.URL, []string{"paris"})

		_, err := registrations.Submit(context.Background(), "Dana", "A", "T1")
		require.NoError(t, err)

		resp, err := http.Get(server.URL + "/api/challenge")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var payload struct {
			Challenge   models.Challenge   `json:"challenge"`
			Leaderboard models.Leaderboard `json:"leaderboard"`
		}
		decode(t, resp, &payload)
		assert.NotEmpty(t, payload.Challenge.ID)
		assert.Len(t, payload.Leaderboard.Overall, 1)
	})

	t.Run("erase wipes everything", func(t *testing.T) {
		server, registrations := newTestServer(t)
		createChallenge(t, server.URL, []string{"paris"})

		_, err := registrations.Submit(context.Background(), "Dana", "A", "T1")
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPost, server.URL+"/api/challenge/erase", nil)
		require.NoError(t, err)
		req.Header.Set("X-Admin-Token", adminToken)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = http.Get(server.URL + "/api/challenge")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		list, err := registrations.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestHandler_UserData(t *testing.T) {
	server, registrations := newTestServer(t)

	reg, err := registrations.Submit(context.Background(), "Dana", "A", "T1")
	require.NoError(t, err)

	resp := postJSON(t, server.URL+"/api/user-data", map[string]string{
		"participant_id": reg.ParticipantID,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data map[string]string
	decode(t, resp, &data)
	assert.Equal(t, "Dana", data["name"])
	assert.Equal(t, "A", data["unit"])
	assert.Equal(t, "T1", data["team"])

	resp = postJSON(t, server.URL+"/api/user-data", map[string]string{
		"participant_id": "DCH-MISSING0",
	}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
