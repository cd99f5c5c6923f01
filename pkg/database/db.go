package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names. They match the names registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver         string
	DSN            string
	MaxConns       int
	Timeout        time.Duration
	TimeZone       string
	ClientEncoding string
}

func init() {
	// modernc registers as "sqlite", which sqlx does not know by name
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens a *sqlx.DB for cfg.Driver and verifies connectivity with a ping.
func Connect(cfg Config) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	dsn := cfg.DSN
	if driver == DriverSQLite && !strings.HasPrefix(dsn, "file:") {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 5
	}
	// sqlite allows a single writer; one connection avoids SQLITE_BUSY under load
	if driver == DriverSQLite {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Apply session-level settings if provided (postgres only)
	if driver == DriverPostgres {
		if cfg.TimeZone != "" {
			if _, err := db.ExecContext(ctx, "SET TIME ZONE "+quoteLiteral(cfg.TimeZone)); err != nil {
				db.Close()
				return nil, fmt.Errorf("set time zone: %w", err)
			}
		}
		if cfg.ClientEncoding != "" {
			if _, err := db.ExecContext(ctx, "SET client_encoding = "+quoteLiteral(cfg.ClientEncoding)); err != nil {
				db.Close()
				return nil, fmt.Errorf("set client_encoding: %w", err)
			}
		}
	}

	return sqlx.NewDb(db, driver), nil
}

// SQLiteDSN builds a modernc sqlite DSN for a database file with foreign keys
// enforced and timestamps written in a format sqlite can compare and parse back.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// quoteLiteral escapes single quotes and wraps the value in single quotes
// so it can be used safely in SET ... statements which don't accept
// parameter placeholders for the right-hand side.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
