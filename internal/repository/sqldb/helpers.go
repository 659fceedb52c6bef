package sqldb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/logger"
)

const defaultLimit = 100

// Helper functions shared across repository implementations

func tx(ctx context.Context, database *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execSq(ctx context.Context, e execer, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return e.ExecContext(ctx, query, args...)
}

// insertReturningID runs an INSERT ... RETURNING id, which both SQLite
// (3.35+) and Postgres support.
func insertReturningID(ctx context.Context, e execer, b squirrel.InsertBuilder) (int64, error) {
	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := e.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// searchTerms turns free text into one LIKE condition per word; every word
// must match at least one of the columns. Wildcards typed by the user match
// literally.
func searchTerms(d db.Dialect, q string, columns ...string) []squirrel.Sqlizer {
	var out []squirrel.Sqlizer
	for _, word := range strings.Fields(q) {
		pattern := "%" + likeEscaper.Replace(word) + "%"
		var anyOf squirrel.Or
		for _, col := range columns {
			anyOf = append(anyOf, squirrel.Expr(col+" "+d.LikeOperator()+` ? ESCAPE '\'`, pattern))
		}
		out = append(out, anyOf)
	}
	return out
}

// orderClauses maps requested field names ("-name" for descending) onto
// whitelisted SQL expressions, falling back when nothing valid was asked.
// idCol is appended as a tiebreaker so paging is stable.
func orderClauses(allowed map[string]string, requested, fallback []string, idCol string) []string {
	build := func(fields []string) []string {
		var out []string
		for _, f := range fields {
			dir := "ASC"
			if strings.HasPrefix(f, "-") {
				dir = "DESC"
				f = f[1:]
			}
			if col, ok := allowed[f]; ok {
				out = append(out, col+" "+dir)
			}
		}
		return out
	}
	clauses := build(requested)
	if len(clauses) == 0 {
		clauses = build(fallback)
	}
	return append(clauses, idCol+" ASC")
}

func page(limit, offset int) (uint64, uint64) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}

func dateRange(col string, from, to *time.Time) []squirrel.Sqlizer {
	var out []squirrel.Sqlizer
	if from != nil {
		out = append(out, squirrel.GtOrEq{col: normalizeTime(*from)})
	}
	if to != nil {
		out = append(out, squirrel.Lt{col: normalizeTime(*to)})
	}
	return out
}

// normalizeTime stores instants as whole-second UTC so SQLite's textual
// timestamps compare correctly.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
