package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema/postgres.sql
var postgresSchema string

//go:embed schema/sqlite.sql
var sqliteSchema string

// tables in dependency order; ResetSchema drops them in reverse.
var tables = []string{"users", "tasks", "comments"}

// EnsureSchema creates the users, tasks and comments tables if they do not exist (idempotent).
// This is a convenience for early development; prefer migrations in production.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	ddl, err := schemaFor(db.DriverName())
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ResetSchema drops every table and recreates the schema. All data is lost.
func ResetSchema(ctx context.Context, db *sqlx.DB) error {
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+tables[i]); err != nil {
			return fmt.Errorf("drop %s: %w", tables[i], err)
		}
	}
	return EnsureSchema(ctx, db)
}

func schemaFor(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return postgresSchema, nil
	case DriverSQLite:
		return sqliteSchema, nil
	default:
		return "", fmt.Errorf("no schema for driver %q", driver)
	}
}
