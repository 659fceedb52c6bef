package models

import "time"

type Round struct {
	ID           int64     `json:"id"`
	TournamentID int64     `json:"tournament_id"`
	Name         string    `json:"name"`
	RoundDate    time.Time `json:"round_date"`

	// Populated on list reads.
	TournamentName string `json:"tournament_name,omitempty"`
}

// RoundSummary is the game tally the round guard inspects.
type RoundSummary struct {
	RoundID      int64
	GameCount    int
	PlannedCount int
}

type RoundFilter struct {
	TournamentID int64
	Search       string
	DateFrom     *time.Time
	DateTo       *time.Time
	OrderBy      []string
	Limit        int
	Offset       int
}
