package repository

import (
	"context"
	"time"

	"github.com/vytor/tourneydesk/internal/models"
)

// PlayerRepository handles player data access
type PlayerRepository interface {
	Get(ctx context.Context, id int64) (*models.Player, error)
	List(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error)
	Count(ctx context.Context, filter models.PlayerFilter) (int, error)
	Insert(ctx context.Context, player models.Player) (int64, error)
	Update(ctx context.Context, player models.Player) error
	Delete(ctx context.Context, ids ...int64) error
}

// TournamentRepository handles tournaments and their player rosters
type TournamentRepository interface {
	Get(ctx context.Context, id int64) (*models.Tournament, error)
	List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, error)
	Count(ctx context.Context, filter models.TournamentFilter) (int, error)
	Dates(ctx context.Context, filter models.TournamentFilter) ([]time.Time, error)
	// Roster returns the tournament's players, strongest first; ties keep
	// insertion order of the player records.
	Roster(ctx context.Context, tournamentID int64) ([]models.Player, error)
	RosterEntries(ctx context.Context, tournamentID int64) ([]models.RosterEntry, error)
	// Save inserts or updates the tournament and replaces its roster in a
	// single transaction. t.ID is set on insert.
	Save(ctx context.Context, t *models.Tournament, playerIDs []int64) error
	Delete(ctx context.Context, ids ...int64) error
}

// RoundRepository handles rounds and the games they own
type RoundRepository interface {
	Get(ctx context.Context, id int64) (*models.Round, error)
	List(ctx context.Context, filter models.RoundFilter) ([]models.Round, error)
	Count(ctx context.Context, filter models.RoundFilter) (int, error)
	Dates(ctx context.Context, filter models.RoundFilter) ([]time.Time, error)
	// Latest summarizes the tournament's most recent round by round date,
	// or returns nil when it has none.
	Latest(ctx context.Context, tournamentID int64) (*models.RoundSummary, error)
	// Save inserts or updates the round together with its games, deleting
	// the listed game ids, in a single transaction. r.ID and new game ids
	// are set on insert.
	Save(ctx context.Context, r *models.Round, games []models.Game, deleteGameIDs []int64) error
	Delete(ctx context.Context, ids ...int64) error
}

// GameRepository handles game reads
type GameRepository interface {
	ListByRound(ctx context.Context, roundID int64) ([]models.Game, error)
}
