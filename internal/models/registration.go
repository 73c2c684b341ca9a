package models

import "time"

// RegistrationStatus is the moderation state of a registration
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

// IsDecision reports whether the status is a terminal moderation decision.
func (s RegistrationStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Registration represents one participant's enrollment
type Registration struct {
	ParticipantID string             `json:"participant_id"`
	Name          string             `json:"name"`
	Unit          string             `json:"unit"`
	Team          string             `json:"team"`
	Status        RegistrationStatus `json:"status"`
	Timestamp     time.Time          `json:"timestamp"`
}

// RateLimitEntry is an ephemeral attempt counter for one caller key.
// An entry older than the configured window is treated as absent on read.
type RateLimitEntry struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}
