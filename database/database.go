// Package database owns the schema of the user store and applies it with goose.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/dtroode/userkeeper-server/internal/logger"
)

// Dialect selects the migration set and the goose dialect.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

//go:embed migrations
var migrations embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

func (d Dialect) dir() (string, error) {
	switch d {
	case DialectPostgres:
		return "migrations/postgres", nil
	case DialectSQLite:
		return "migrations/sqlite", nil
	default:
		return "", fmt.Errorf("unsupported migration dialect %q", d)
	}
}

// Migrate opens a short-lived PostgreSQL connection for dsn and applies all
// pending migrations.
func Migrate(ctx context.Context, dsn string, log *logger.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	return Apply(db, DialectPostgres, log)
}

// Apply runs all pending migrations of the dialect against db. Goose output
// goes to log when it is not nil and is discarded otherwise.
func Apply(db *sql.DB, dialect Dialect, log *logger.Logger) error {
	dir, err := dialect.dir()
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	var gl goose.Logger = discardLogger{}
	if log != nil {
		gl = NewGooseLogger(log)
	}
	goose.SetLogger(gl)
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
