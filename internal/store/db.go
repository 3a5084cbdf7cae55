// Package store is the persistence layer: the User repository, the
// Project/Unit aggregate repository, and the system_config fee-rate reader,
// all sharing one *sql.DB opened here. Every exported repository method is a
// short, synchronous, per-call transaction — no cross-call locking beyond
// what the SQLite/Postgres driver itself serializes.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx, registers "pgx"
	_ "modernc.org/sqlite"             // driver: sqlite, registers "sqlite"
)

// Driver selects which SQL engine backs the store.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a database handle with foreign keys enabled and a busy
// timeout configured, per spec §4.2 step 1. It does not run migrations —
// callers run migrate.Migrator.Run before serving any repository call.
func Open(ctx context.Context, driver Driver, dsn string, timeout time.Duration) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:condos.db?cache=shared&mode=rwc"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			return nil, fmt.Errorf("store: postgres dsn is required")
		}
	default:
		return nil, fmt.Errorf("store: unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	tunePool(driver, db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	if driver == DriverSQLite {
		if err := applySQLitePragmas(ctx, db, timeout); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

// tunePool sets conservative pool defaults; SQLite gets a single connection
// since it serializes writes internally and a larger pool only invites
// SQLITE_BUSY under concurrent handler goroutines.
func tunePool(driver Driver, db *sql.DB) {
	switch driver {
	case DriverSQLite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	case DriverPostgres:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(45 * time.Minute)
	}
}

func applySQLitePragmas(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", timeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise (or on panic, which is re-raised after rollback).
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// isBusy reports whether err looks like a SQLite/Postgres busy-timeout
// failure, used by the repositories to translate low-level driver errors
// into domain.KindDbBusy instead of a bare wrapped error.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sub := range []string{"database is locked", "sqlite_busy", "busy", "timeout"} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
