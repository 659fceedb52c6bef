package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/vytor/tourneydesk/internal/logger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Dialect captures the differences between the supported SQL backends.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// Placeholder returns the squirrel placeholder format for the dialect.
func (d Dialect) Placeholder() squirrel.PlaceholderFormat {
	if d == Postgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// Builder returns a statement builder bound to the dialect's placeholders.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder())
}

// migrationsDir is the embedded directory holding the dialect's migrations.
func (d Dialect) migrationsDir() string {
	if d == Postgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// LikeOperator returns the case-insensitive LIKE keyword.
func (d Dialect) LikeOperator() string {
	if d == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

type DB struct {
	*sql.DB
	Dialect Dialect
	log     *logger.Logger
}

// Open connects to driver ("sqlite3" or "postgres") and applies migrations.
func Open(driver, dsn string) (*DB, error) {
	log := logger.Default().WithPrefix("db")
	dialect := Dialect(driver)

	var sqlDB *sql.DB
	var err error
	switch dialect {
	case SQLite:
		full := dsn
		if !strings.Contains(dsn, "?") {
			full = dsn + "?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
		}
		log.Info("opening sqlite database: %s", dsn)
		sqlDB, err = sql.Open("sqlite3", full)
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	case Postgres:
		log.Info("opening postgres database")
		sqlDB, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: dialect, log: log}

	log.Debug("applying migrations")
	if err := db.applyMigrations(ctx); err != nil {
		log.Error("failed to apply migrations: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

func (db *DB) applyMigrations(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return err
	}

	dir := db.Dialect.migrationsDir()
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		version := entry.Name()
		applied, err := db.isMigrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			db.log.Debug("migration %s already applied, skipping", version)
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile(dir + "/" + version)
		if err != nil {
			return err
		}
		db.log.Info("applying migration: %s", version)
		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		query, args, err := db.Dialect.Builder().Insert("schema_migrations").Columns("version").Values(version).ToSql()
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := db.Dialect.Builder().
		Select("version").From("schema_migrations").
		Where(squirrel.Eq{"version": version}).ToSql()
	if err != nil {
		return false, err
	}
	var v string
	err = db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// IsForeignKeyViolation reports whether err is a referential-integrity failure.
// SQLite reports ON DELETE RESTRICT through its trigger code, so the message
// is checked as well.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return true
		}
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			strings.Contains(sqliteErr.Error(), "FOREIGN KEY")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

// IsUniqueViolation reports whether err is a uniqueness failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
