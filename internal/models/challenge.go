package models

import "time"

// Challenge represents one published quiz item
type Challenge struct {
	ID              string    `json:"id"`
	ImageRef        string    `json:"image_ref"`
	AcceptedAnswers []string  `json:"accepted_answers"`
	Question        string    `json:"question,omitempty"`
	Guesses         []Guess   `json:"guesses"`
	CreatedAt       time.Time `json:"created_at"`
}

// Guess represents a single participant submission against a challenge.
// Guesses are append-only; IsCorrect is computed at submission time and
// never changes afterwards.
type Guess struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	IsCorrect       bool      `json:"is_correct"`
}

// HasGuessFrom reports whether the challenge already holds a guess from
// the given participant.
func (c *Challenge) HasGuessFrom(participantID string) bool {
	for _, g := range c.Guesses {
		if g.ParticipantID == participantID {
			return true
		}
	}
	return false
}
