package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/logger"
	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/repository"
)

var roundOrdering = map[string]string{
	"name":       "r.name",
	"tournament": "t.name",
	"round_date": "r.round_date",
}

type roundRepository struct {
	db *db.DB
	sb squirrel.StatementBuilderType
}

// NewRoundRepository creates a new RoundRepository implementation
func NewRoundRepository(database *db.DB) repository.RoundRepository {
	return &roundRepository{db: database, sb: database.Dialect.Builder()}
}

func (r *roundRepository) selectRounds() squirrel.SelectBuilder {
	return r.sb.Select("r.id", "r.tournament_id", "r.name", "r.round_date", "t.name").
		From("rounds r").
		Join("tournaments t ON t.id = r.tournament_id")
}

func scanRound(row interface{ Scan(...any) error }, rd *models.Round) error {
	return row.Scan(&rd.ID, &rd.TournamentID, &rd.Name, &rd.RoundDate, &rd.TournamentName)
}

func (r *roundRepository) Get(ctx context.Context, id int64) (*models.Round, error) {
	log := logger.FromContext(ctx).WithPrefix("round_repo")
	log.Debug("getting round: id=%d", id)

	query, args, err := r.selectRounds().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var rd models.Round
	if err := scanRound(r.db.QueryRowContext(ctx, query, args...), &rd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("round not found: id=%d", id)
		} else {
			log.Error("failed to get round: %v", err)
		}
		return nil, err
	}
	return &rd, nil
}

func (r *roundRepository) filtered(b squirrel.SelectBuilder, filter models.RoundFilter) squirrel.SelectBuilder {
	if filter.TournamentID != 0 {
		b = b.Where(squirrel.Eq{"r.tournament_id": filter.TournamentID})
	}
	for _, cond := range searchTerms(r.db.Dialect, filter.Search, "r.name") {
		b = b.Where(cond)
	}
	for _, cond := range dateRange("r.round_date", filter.DateFrom, filter.DateTo) {
		b = b.Where(cond)
	}
	return b
}

func (r *roundRepository) List(ctx context.Context, filter models.RoundFilter) ([]models.Round, error) {
	log := logger.FromContext(ctx).WithPrefix("round_repo")
	log.Debug("listing rounds: tournament_id=%d, search=%q", filter.TournamentID, filter.Search)

	limit, offset := page(filter.Limit, filter.Offset)
	query, args, err := r.filtered(r.selectRounds(), filter).
		OrderBy(orderClauses(roundOrdering, filter.OrderBy, []string{"-round_date"}, "r.id")...).
		Limit(limit).Offset(offset).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list rounds: %v", err)
		return nil, err
	}
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		var rd models.Round
		if err := scanRound(rows, &rd); err != nil {
			log.Error("failed to scan round row: %v", err)
			return nil, err
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}

func (r *roundRepository) Count(ctx context.Context, filter models.RoundFilter) (int, error) {
	query, args, err := r.filtered(r.sb.Select("COUNT(*)").From("rounds r"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *roundRepository) Dates(ctx context.Context, filter models.RoundFilter) ([]time.Time, error) {
	query, args, err := r.filtered(r.sb.Select("r.round_date").From("rounds r"), filter).
		OrderBy("r.round_date ASC").ToSql()
	if err != nil {
		return nil, err
	}
	return queryTimes(ctx, r.db, query, args)
}

func (r *roundRepository) Latest(ctx context.Context, tournamentID int64) (*models.RoundSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("round_repo")

	query, args, err := r.sb.Select(
		"r.id",
		"COUNT(g.id)",
		"COALESCE(SUM(CASE WHEN g.status = 'planned' THEN 1 ELSE 0 END), 0)",
	).
		From("rounds r").
		LeftJoin("games g ON g.round_id = r.id").
		Where(squirrel.Eq{"r.tournament_id": tournamentID}).
		GroupBy("r.id", "r.round_date").
		OrderBy("r.round_date DESC", "r.id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var s models.RoundSummary
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&s.RoundID, &s.GameCount, &s.PlannedCount)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("tournament %d has no rounds", tournamentID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load latest round: %v", err)
		return nil, err
	}
	log.Debug("latest round for tournament %d: id=%d games=%d planned=%d",
		tournamentID, s.RoundID, s.GameCount, s.PlannedCount)
	return &s, nil
}

func (r *roundRepository) Save(ctx context.Context, rd *models.Round, games []models.Game, deleteGameIDs []int64) error {
	log := logger.FromContext(ctx).WithPrefix("round_repo")
	log.Debug("saving round: id=%d, games=%d, deleted=%d", rd.ID, len(games), len(deleteGameIDs))

	return tx(ctx, r.db.DB, func(tx *sql.Tx) error {
		if rd.ID == 0 {
			id, err := insertReturningID(ctx, tx, r.sb.Insert("rounds").
				Columns("tournament_id", "name", "round_date").
				Values(rd.TournamentID, rd.Name, normalizeTime(rd.RoundDate)))
			if err != nil {
				log.Error("failed to insert round: %v", err)
				return err
			}
			rd.ID = id
		} else {
			res, err := execSq(ctx, tx, r.sb.Update("rounds").SetMap(map[string]any{
				"tournament_id": rd.TournamentID,
				"name":          rd.Name,
				"round_date":    normalizeTime(rd.RoundDate),
			}).Where(squirrel.Eq{"id": rd.ID}))
			if err != nil {
				log.Error("failed to update round: %v", err)
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return sql.ErrNoRows
			}
		}

		if len(deleteGameIDs) > 0 {
			if _, err := execSq(ctx, tx, r.sb.Delete("games").
				Where(squirrel.Eq{"round_id": rd.ID, "id": deleteGameIDs})); err != nil {
				return err
			}
		}

		for i := range games {
			g := &games[i]
			g.RoundID = rd.ID
			if g.Status == "" {
				g.Status = models.StatusPlanned
			}
			if g.ID == 0 {
				id, err := insertReturningID(ctx, tx, r.sb.Insert("games").
					Columns("round_id", "player_id", "player_score", "opponent_id", "opponent_score", "status").
					Values(g.RoundID, g.PlayerID, g.PlayerScore.StringFixed(1), g.OpponentID, g.OpponentScore.StringFixed(1), string(g.Status)))
				if err != nil {
					log.Error("failed to insert game: %v", err)
					return err
				}
				g.ID = id
				continue
			}
			res, err := execSq(ctx, tx, r.sb.Update("games").SetMap(map[string]any{
				"player_id":      g.PlayerID,
				"player_score":   g.PlayerScore.StringFixed(1),
				"opponent_id":    g.OpponentID,
				"opponent_score": g.OpponentScore.StringFixed(1),
				"status":         string(g.Status),
			}).Where(squirrel.Eq{"id": g.ID, "round_id": rd.ID}))
			if err != nil {
				log.Error("failed to update game %d: %v", g.ID, err)
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return sql.ErrNoRows
			}
		}
		return nil
	})
}

func (r *roundRepository) Delete(ctx context.Context, ids ...int64) error {
	logger.FromContext(ctx).WithPrefix("round_repo").Debug("deleting rounds: ids=%v", ids)
	if len(ids) == 0 {
		return nil
	}
	return tx(ctx, r.db.DB, func(tx *sql.Tx) error {
		_, err := execSq(ctx, tx, r.sb.Delete("rounds").Where(squirrel.Eq{"id": ids}))
		return err
	})
}
