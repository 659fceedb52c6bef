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

var tournamentOrdering = map[string]string{
	"name":          "t.name",
	"country":       "t.country",
	"city":          "t.city",
	"start_date":    "t.start_date",
	"end_date":      "t.end_date",
	"players_count": "players_count",
}

type tournamentRepository struct {
	db *db.DB
	sb squirrel.StatementBuilderType
}

// NewTournamentRepository creates a new TournamentRepository implementation
func NewTournamentRepository(database *db.DB) repository.TournamentRepository {
	return &tournamentRepository{db: database, sb: database.Dialect.Builder()}
}

func (r *tournamentRepository) selectWithCounts() squirrel.SelectBuilder {
	return r.sb.Select(
		"t.id", "t.name", "t.country", "t.city", "t.start_date", "t.end_date",
		"(SELECT COUNT(*) FROM tournament_players tp WHERE tp.tournament_id = t.id) AS players_count",
		"(SELECT COUNT(*) FROM rounds rd WHERE rd.tournament_id = t.id) AS rounds_count",
	).From("tournaments t")
}

func scanTournament(row interface{ Scan(...any) error }, t *models.Tournament) error {
	return row.Scan(&t.ID, &t.Name, &t.Country, &t.City, &t.StartDate, &t.EndDate, &t.PlayersCount, &t.RoundsCount)
}

func (r *tournamentRepository) Get(ctx context.Context, id int64) (*models.Tournament, error) {
	log := logger.FromContext(ctx).WithPrefix("tournament_repo")
	log.Debug("getting tournament: id=%d", id)

	query, args, err := r.selectWithCounts().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var t models.Tournament
	if err := scanTournament(r.db.QueryRowContext(ctx, query, args...), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("tournament not found: id=%d", id)
		} else {
			log.Error("failed to get tournament: %v", err)
		}
		return nil, err
	}
	return &t, nil
}

func (r *tournamentRepository) filtered(b squirrel.SelectBuilder, filter models.TournamentFilter) squirrel.SelectBuilder {
	for _, cond := range searchTerms(r.db.Dialect, filter.Search, "t.name") {
		b = b.Where(cond)
	}
	for _, cond := range dateRange("t.start_date", filter.DateFrom, filter.DateTo) {
		b = b.Where(cond)
	}
	return b
}

func (r *tournamentRepository) List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, error) {
	log := logger.FromContext(ctx).WithPrefix("tournament_repo")
	log.Debug("listing tournaments: search=%q, order=%v", filter.Search, filter.OrderBy)

	limit, offset := page(filter.Limit, filter.Offset)
	query, args, err := r.filtered(r.selectWithCounts(), filter).
		OrderBy(orderClauses(tournamentOrdering, filter.OrderBy, []string{"-start_date"}, "t.id")...).
		Limit(limit).Offset(offset).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tournaments: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Tournament
	for rows.Next() {
		var t models.Tournament
		if err := scanTournament(rows, &t); err != nil {
			log.Error("failed to scan tournament row: %v", err)
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tournamentRepository) Count(ctx context.Context, filter models.TournamentFilter) (int, error) {
	query, args, err := r.filtered(r.sb.Select("COUNT(*)").From("tournaments t"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *tournamentRepository) Dates(ctx context.Context, filter models.TournamentFilter) ([]time.Time, error) {
	query, args, err := r.filtered(r.sb.Select("t.start_date").From("tournaments t"), filter).
		OrderBy("t.start_date ASC").ToSql()
	if err != nil {
		return nil, err
	}
	return queryTimes(ctx, r.db, query, args)
}

func (r *tournamentRepository) Roster(ctx context.Context, tournamentID int64) ([]models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("tournament_repo")
	log.Debug("loading roster: tournament_id=%d", tournamentID)

	cols := make([]string, len(playerColumns))
	for i, c := range playerColumns {
		cols[i] = "p." + c
	}
	query, args, err := r.sb.Select(cols...).
		From("players p").
		Join("tournament_players tp ON tp.player_id = p.id").
		Where(squirrel.Eq{"tp.tournament_id": tournamentID}).
		OrderBy("p.rating DESC", "p.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load roster: %v", err)
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *tournamentRepository) RosterEntries(ctx context.Context, tournamentID int64) ([]models.RosterEntry, error) {
	query, args, err := r.sb.Select("tp.id", "tp.player_id").
		From("tournament_players tp").
		Join("players p ON p.id = tp.player_id").
		Where(squirrel.Eq{"tp.tournament_id": tournamentID}).
		OrderBy("p.name ASC", "tp.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.ID, &e.PlayerID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *tournamentRepository) Save(ctx context.Context, t *models.Tournament, playerIDs []int64) error {
	log := logger.FromContext(ctx).WithPrefix("tournament_repo")
	log.Debug("saving tournament: id=%d, roster=%d players", t.ID, len(playerIDs))

	return tx(ctx, r.db.DB, func(tx *sql.Tx) error {
		if t.ID == 0 {
			id, err := insertReturningID(ctx, tx, r.sb.Insert("tournaments").
				Columns("name", "country", "city", "start_date", "end_date").
				Values(t.Name, t.Country, t.City, normalizeTime(t.StartDate), normalizeTime(t.EndDate)))
			if err != nil {
				log.Error("failed to insert tournament: %v", err)
				return err
			}
			t.ID = id
		} else {
			res, err := execSq(ctx, tx, r.sb.Update("tournaments").SetMap(map[string]any{
				"name":       t.Name,
				"country":    t.Country,
				"city":       t.City,
				"start_date": normalizeTime(t.StartDate),
				"end_date":   normalizeTime(t.EndDate),
			}).Where(squirrel.Eq{"id": t.ID}))
			if err != nil {
				log.Error("failed to update tournament: %v", err)
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return sql.ErrNoRows
			}
		}

		del := r.sb.Delete("tournament_players").Where(squirrel.Eq{"tournament_id": t.ID})
		if len(playerIDs) > 0 {
			del = del.Where(squirrel.NotEq{"player_id": playerIDs})
		}
		if _, err := execSq(ctx, tx, del); err != nil {
			return err
		}

		for _, pid := range playerIDs {
			var exists int
			query, args, err := r.sb.Select("COUNT(*)").From("tournament_players").
				Where(squirrel.Eq{"tournament_id": t.ID, "player_id": pid}).ToSql()
			if err != nil {
				return err
			}
			if err := tx.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
				return err
			}
			if exists > 0 {
				continue
			}
			if _, err := execSq(ctx, tx, r.sb.Insert("tournament_players").
				Columns("tournament_id", "player_id").Values(t.ID, pid)); err != nil {
				log.Error("failed to add player %d to roster: %v", pid, err)
				return err
			}
		}
		return nil
	})
}

func (r *tournamentRepository) Delete(ctx context.Context, ids ...int64) error {
	logger.FromContext(ctx).WithPrefix("tournament_repo").Debug("deleting tournaments: ids=%v", ids)
	if len(ids) == 0 {
		return nil
	}
	return tx(ctx, r.db.DB, func(tx *sql.Tx) error {
		_, err := execSq(ctx, tx, r.sb.Delete("tournaments").Where(squirrel.Eq{"id": ids}))
		return err
	})
}

func queryTimes(ctx context.Context, database *db.DB, query string, args []any) ([]time.Time, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
