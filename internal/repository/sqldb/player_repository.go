package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/logger"
	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/repository"
)

var playerColumns = []string{
	"id", "name", "country", "register_date", "initial_rating", "rating", "fide_id", "fide_title",
}

var playerOrdering = map[string]string{
	"name":          "name",
	"fide_title":    "fide_title",
	"country":       "country",
	"rating":        "rating",
	"fide_id":       "fide_id",
	"register_date": "register_date",
}

type playerRepository struct {
	db *db.DB
	sb squirrel.StatementBuilderType
}

// NewPlayerRepository creates a new PlayerRepository implementation
func NewPlayerRepository(database *db.DB) repository.PlayerRepository {
	return &playerRepository{db: database, sb: database.Dialect.Builder()}
}

func scanPlayer(row interface{ Scan(...any) error }, p *models.Player) error {
	return row.Scan(&p.ID, &p.Name, &p.Country, &p.RegisterDate, &p.InitialRating, &p.Rating, &p.FideID, &p.FideTitle)
}

func (r *playerRepository) Get(ctx context.Context, id int64) (*models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("getting player: id=%d", id)

	query, args, err := r.sb.Select(playerColumns...).From("players").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Player
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, args...), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("player not found: id=%d", id)
		} else {
			log.Error("failed to get player: %v", err)
		}
		return nil, err
	}
	return &p, nil
}

func (r *playerRepository) filtered(b squirrel.SelectBuilder, filter models.PlayerFilter) squirrel.SelectBuilder {
	for _, cond := range searchTerms(r.db.Dialect, filter.Search, "name") {
		b = b.Where(cond)
	}
	if len(filter.IDs) > 0 {
		b = b.Where(squirrel.Eq{"id": filter.IDs})
	}
	for _, cond := range dateRange("register_date", filter.DateFrom, filter.DateTo) {
		b = b.Where(cond)
	}
	return b
}

func (r *playerRepository) List(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("listing players: search=%q, order=%v", filter.Search, filter.OrderBy)

	limit, offset := page(filter.Limit, filter.Offset)
	query, args, err := r.filtered(r.sb.Select(playerColumns...).From("players"), filter).
		OrderBy(orderClauses(playerOrdering, filter.OrderBy, []string{"name"}, "id")...).
		Limit(limit).Offset(offset).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list players: %v", err)
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			log.Error("failed to scan player row: %v", err)
			return nil, err
		}
		players = append(players, p)
	}
	log.Debug("found %d players", len(players))
	return players, rows.Err()
}

func (r *playerRepository) Count(ctx context.Context, filter models.PlayerFilter) (int, error) {
	query, args, err := r.filtered(r.sb.Select("COUNT(*)").From("players"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.FromContext(ctx).WithPrefix("player_repo").Error("failed to count players: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *playerRepository) Insert(ctx context.Context, p models.Player) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("inserting player: name=%s", p.Name)

	id, err := insertReturningID(ctx, r.db, r.sb.Insert("players").
		Columns(playerColumns[1:]...).
		Values(p.Name, p.Country, dateOnly(p.RegisterDate), p.InitialRating, p.Rating, p.FideID, p.FideTitle))
	if err != nil {
		log.Error("failed to insert player: %v", err)
		return 0, err
	}
	log.Debug("player inserted: id=%d", id)
	return id, nil
}

// Update writes the editable columns; register_date is never touched.
func (r *playerRepository) Update(ctx context.Context, p models.Player) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("updating player: id=%d", p.ID)

	res, err := execSq(ctx, r.db, r.sb.Update("players").SetMap(map[string]any{
		"name":           p.Name,
		"country":        p.Country,
		"initial_rating": p.InitialRating,
		"rating":         p.Rating,
		"fide_id":        p.FideID,
		"fide_title":     p.FideTitle,
	}).Where(squirrel.Eq{"id": p.ID}))
	if err != nil {
		log.Error("failed to update player: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *playerRepository) Delete(ctx context.Context, ids ...int64) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("deleting players: ids=%v", ids)
	if len(ids) == 0 {
		return nil
	}

	return tx(ctx, r.db.DB, func(tx *sql.Tx) error {
		_, err := execSq(ctx, tx, r.sb.Delete("players").Where(squirrel.Eq{"id": ids}))
		return err
	})
}
