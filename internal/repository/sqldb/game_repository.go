package sqldb

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/logger"
	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/repository"
)

type gameRepository struct {
	db *db.DB
	sb squirrel.StatementBuilderType
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(database *db.DB) repository.GameRepository {
	return &gameRepository{db: database, sb: database.Dialect.Builder()}
}

func (r *gameRepository) ListByRound(ctx context.Context, roundID int64) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("listing games for round: round_id=%d", roundID)

	query, args, err := r.sb.Select(
		"id", "round_id", "player_id", "player_score", "opponent_id", "opponent_score", "status",
	).From("games").
		Where(squirrel.Eq{"round_id": roundID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		var status string
		if err := rows.Scan(&g.ID, &g.RoundID, &g.PlayerID, &g.PlayerScore, &g.OpponentID, &g.OpponentScore, &status); err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		g.Status = models.GameStatus(status)
		games = append(games, g)
	}
	log.Debug("found %d games", len(games))
	return games, rows.Err()
}
