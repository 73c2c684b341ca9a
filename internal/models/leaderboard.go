package models

// LeaderboardEntry is the per-participant accumulator of the leaderboard.
// Every registered participant gets an entry, including those who never
// submitted a guess.
type LeaderboardEntry struct {
	ParticipantID  string `json:"participant_id"`
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	Team           string `json:"team"`
	CorrectGuesses int    `json:"correct_guesses"`
	TotalGuesses   int    `json:"total_guesses"`
}

// GroupStanding aggregates the entries of one unit or one sub-team
type GroupStanding struct {
	Name           string `json:"name"`
	Users          int    `json:"users"`
	CorrectGuesses int    `json:"correct_guesses"`
	TotalGuesses   int    `json:"total_guesses"`
}

// Leaderboard is the full multi-dimensional aggregation
type Leaderboard struct {
	Overall []LeaderboardEntry `json:"overall"`
	ByUnit  []GroupStanding    `json:"by_unit"`
	ByTeam  []GroupStanding    `json:"by_team"`
}
