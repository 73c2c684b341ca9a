package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/service"
	"github.com/fsocietystudios/daily-challenge/pkg/logger"
)

// maxImageSize caps challenge image uploads (multipart memory + read)
const maxImageSize = 10 << 20

// HTTPHandler exposes the challenge core over a thin JSON API. It owns
// no business rules; everything is delegated to the services.
type HTTPHandler struct {
	challenges    service.ChallengeService
	registrations service.RegistrationService
	guesses       service.GuessService
	leaderboard   service.LeaderboardService
	rateLimiter   service.RateLimitService
	adminToken    string
	log           *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler. An empty adminToken disables
// the admin routes entirely.
func NewHTTPHandler(
	challenges service.ChallengeService,
	registrations service.RegistrationService,
	guesses service.GuessService,
	leaderboard service.LeaderboardService,
	rateLimiter service.RateLimitService,
	adminToken string,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		challenges:    challenges,
		registrations: registrations,
		guesses:       guesses,
		leaderboard:   leaderboard,
		rateLimiter:   rateLimiter,
		adminToken:    adminToken,
		log:           log,
	}
}

// Register wires the routes into a mux
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/register", h.handleRegister)
	mux.HandleFunc("/api/registrations", h.handleRegistrations)
	mux.HandleFunc("/api/challenge", h.handleChallenge)
	mux.HandleFunc("/api/challenges", h.handleChallenges)
	mux.HandleFunc("/api/challenge/guess", h.handleGuess)
	mux.HandleFunc("/api/challenge/erase", h.handleErase)
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/api/validate-user", h.handleValidateUser)
	mux.HandleFunc("/api/user-data", h.handleUserData)
}

// POST /api/register
func (h *HTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	allowed, err := h.rateLimiter.CheckAndIncrement(r.Context(), clientKey(r))
	if err != nil {
		h.log.WithError(err).Error("rate limit check failed")
		h.sendError(w, http.StatusInternalServerError, "Failed to submit registration")
		return
	}
	if !allowed {
		h.sendError(w, http.StatusTooManyRequests, "Too many registration attempts, try again tomorrow")
		return
	}

	var req struct {
		Name string `json:"name"`
		Unit string `json:"unit"`
		Team string `json:"team"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	registration, err := h.registrations.Submit(r.Context(), req.Name, req.Unit, req.Team)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidCategory):
			h.sendError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateRegistration):
			h.sendError(w, http.StatusConflict, err.Error())
		default:
			h.log.WithError(err).Error("registration failed")
			h.sendError(w, http.StatusInternalServerError, "Failed to submit registration")
		}
		return
	}

	h.sendJSON(w, http.StatusOK, registration)
}

// GET list, PUT status update, admin only
func (h *HTTPHandler) handleRegistrations(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		registrations, err := h.registrations.List(r.Context())
		if err != nil {
			h.log.WithError(err).Error("failed to list registrations")
			h.sendError(w, http.StatusInternalServerError, "Failed to list registrations")
			return
		}
		h.sendJSON(w, http.StatusOK, registrations)

	case http.MethodPut:
		var req struct {
			ParticipantID string `json:"participant_id"`
			Status        string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		registration, err := h.registrations.UpdateStatus(r.Context(), req.ParticipantID, models.RegistrationStatus(req.Status))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidStatus):
				h.sendError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, service.ErrRegistrationNotFound):
				h.sendError(w, http.StatusNotFound, err.Error())
			default:
				h.log.WithError(err).Error("failed to update registration status")
				h.sendError(w, http.StatusInternalServerError, "Failed to update registration")
			}
			return
		}
		h.sendJSON(w, http.StatusOK, registration)

	default:
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// GET current challenge (with leaderboard), POST new challenge (admin)
func (h *HTTPHandler) handleChallenge(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		challenge, err := h.challenges.Current(r.Context())
		if err != nil {
			h.log.WithError(err).Error("failed to load current challenge")
			h.sendError(w, http.StatusInternalServerError, "Failed to get challenge")
			return
		}
		if challenge == nil {
			h.sendError(w, http.StatusNotFound, "No active challenge")
			return
		}

		leaderboard, err := h.leaderboard.Compute(r.Context())
		if err != nil {
			h.log.WithError(err).Error("failed to compute leaderboard")
			h.sendError(w, http.StatusInternalServerError, "Failed to get challenge")
			return
		}

		h.sendJSON(w, http.StatusOK, map[string]interface{}{
			"challenge":   challenge,
			"leaderboard": leaderboard,
		})

	case http.MethodPost:
		if !h.isAdmin(r) {
			h.sendError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			h.sendError(w, http.StatusBadRequest, "Failed to parse form")
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "Image is required")
			return
		}
		defer file.Close()

		image, err := io.ReadAll(io.LimitReader(file, maxImageSize))
		if err != nil {
			h.sendError(w, http.StatusInternalServerError, "Failed to read image")
			return
		}

		answers := r.MultipartForm.Value["answer"]
		question := r.FormValue("question")

		challenge, err := h.challenges.Create(r.Context(), image, answers, question)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyAnswerSet), errors.Is(err, service.ErrEmptyImage):
				h.sendError(w, http.StatusBadRequest, err.Error())
			default:
				h.log.WithError(err).Error("failed to create challenge")
				h.sendError(w, http.StatusInternalServerError, "Failed to create challenge")
			}
			return
		}
		h.sendJSON(w, http.StatusOK, challenge)

	default:
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// GET /api/challenges lists the full history, admin only
func (h *HTTPHandler) handleChallenges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !h.isAdmin(r) {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	challenges, err := h.challenges.List(r.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to list challenges")
		h.sendError(w, http.StatusInternalServerError, "Failed to list challenges")
		return
	}
	h.sendJSON(w, http.StatusOK, challenges)
}

// POST /api/challenge/guess
func (h *HTTPHandler) handleGuess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		ParticipantID string `json:"participant_id"`
		Name          string `json:"name"`
		Guess         string `json:"guess"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	approved, err := h.registrations.IsApproved(r.Context(), req.ParticipantID)
	if err != nil {
		h.log.WithError(err).Error("failed to check approval")
		h.sendError(w, http.StatusInternalServerError, "Failed to submit guess")
		return
	}
	if !approved {
		h.sendError(w, http.StatusForbidden, "Participant is not approved")
		return
	}

	result, err := h.guesses.Submit(r.Context(), req.ParticipantID, req.Name, req.Guess)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			h.sendError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoActiveChallenge):
			h.sendError(w, http.StatusConflict, err.Error())
		default:
			h.log.WithError(err).Error("failed to submit guess")
			h.sendError(w, http.StatusInternalServerError, "Failed to submit guess")
		}
		return
	}
	h.sendJSON(w, http.StatusOK, result)
}

// POST /api/challenge/erase, admin only
func (h *HTTPHandler) handleErase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !h.isAdmin(r) {
		h.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.challenges.EraseAll(r.Context()); err != nil {
		h.log.WithError(err).Error("failed to erase data")
		h.sendError(w, http.StatusInternalServerError, "Failed to erase data")
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /api/leaderboard
func (h *HTTPHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	leaderboard, err := h.leaderboard.Compute(r.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to compute leaderboard")
		h.sendError(w, http.StatusInternalServerError, "Failed to compute leaderboard")
		return
	}
	h.sendJSON(w, http.StatusOK, leaderboard)
}

// POST /api/validate-user
func (h *HTTPHandler) handleValidateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		ParticipantID string `json:"participant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParticipantID == "" {
		h.sendError(w, http.StatusBadRequest, "Participant ID is required")
		return
	}

	approved, err := h.registrations.IsApproved(r.Context(), req.ParticipantID)
	if err != nil {
		h.log.WithError(err).Error("failed to validate participant")
		h.sendError(w, http.StatusInternalServerError, "Failed to validate participant")
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]bool{"is_valid": approved})
}

// POST /api/user-data
func (h *HTTPHandler) handleUserData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		ParticipantID string `json:"participant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParticipantID == "" {
		h.sendError(w, http.StatusBadRequest, "Participant ID is required")
		return
	}

	registration, err := h.registrations.Get(r.Context(), req.ParticipantID)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			h.sendError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.WithError(err).Error("failed to load participant data")
		h.sendError(w, http.StatusInternalServerError, "Failed to load participant data")
		return
	}

	h.sendJSON(w, http.StatusOK, map[string]string{
		"name": registration.Name,
		"unit": registration.Unit,
		"team": registration.Team,
	})
}

// isAdmin checks the opaque admin signal. Cookie and session mechanics
// live outside this service.
func (h *HTTPHandler) isAdmin(r *http.Request) bool {
	if h.adminToken == "" {
		return false
	}
	return r.Header.Get("X-Admin-Token") == h.adminToken
}

// clientKey derives the rate-limit key from the caller network address
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "rate_limit:" + strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return "rate_limit:" + host
}

func (h *HTTPHandler) sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.WithError(err).Error("failed to encode response")
	}
}

func (h *HTTPHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, map[string]string{"error": message})
}
