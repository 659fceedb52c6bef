package models

import "time"

type Tournament struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Populated on list reads.
	PlayersCount int `json:"players_count"`
	RoundsCount  int `json:"rounds_count"`
}

// RosterEntry is one row of the tournament/player join table.
type RosterEntry struct {
	ID       int64 `json:"id"`
	PlayerID int64 `json:"player_id"`
}

type TournamentFilter struct {
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	OrderBy  []string
	Limit    int
	Offset   int
}
