package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied
// and foreign keys enforced.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertPlayer stores a player directly and returns its id.
func InsertPlayer(t *testing.T, database *db.DB, name string, rating int) int64 {
	t.Helper()
	var id int64
	err := database.QueryRowContext(context.Background(), `
INSERT INTO players (name, country, register_date, initial_rating, rating, fide_id, fide_title)
VALUES (?, 'NO', ?, ?, ?, ?, '')
RETURNING id
`, name, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rating, rating, 1000+int64(rating)).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertTournament stores a tournament with the given roster.
func InsertTournament(t *testing.T, database *db.DB, name string, start time.Time, playerIDs ...int64) int64 {
	t.Helper()
	ctx := context.Background()
	var id int64
	err := database.QueryRowContext(ctx, `
INSERT INTO tournaments (name, country, city, start_date, end_date)
VALUES (?, 'NO', 'Oslo', ?, ?)
RETURNING id
`, name, start.UTC(), start.UTC().Add(72*time.Hour)).Scan(&id)
	require.NoError(t, err)
	for _, pid := range playerIDs {
		_, err := database.ExecContext(ctx, `INSERT INTO tournament_players (tournament_id, player_id) VALUES (?, ?)`, id, pid)
		require.NoError(t, err)
	}
	return id
}

// InsertRound stores a round with no games.
func InsertRound(t *testing.T, database *db.DB, tournamentID int64, name string, date time.Time) int64 {
	t.Helper()
	var id int64
	err := database.QueryRowContext(context.Background(), `
INSERT INTO rounds (tournament_id, name, round_date) VALUES (?, ?, ?) RETURNING id
`, tournamentID, name, date.UTC()).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertGame stores a game in a round.
func InsertGame(t *testing.T, database *db.DB, roundID, playerID, opponentID int64, status models.GameStatus, playerScore, opponentScore string) int64 {
	t.Helper()
	var id int64
	err := database.QueryRowContext(context.Background(), `
INSERT INTO games (round_id, player_id, player_score, opponent_id, opponent_score, status)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id
`, roundID, playerID, playerScore, opponentID, opponentScore, string(status)).Scan(&id)
	require.NoError(t, err)
	return id
}

// Score parses a decimal literal.
func Score(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
