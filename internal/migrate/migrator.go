// Package migrate is the single writer of schema: it applies ordered SQL
// migration files from a directory exactly once each, tracked in
// schema_migrations. No other component in this module issues DDL.
//
// Grounded on the file-reading migration managers in the retrieval pack
// (qr-menu's db.MigrationManager, dideban's storage.Migrator) but adapted to
// spec's directory-of-files contract instead of either repo's
// embedded/registered-in-code migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var filenamePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)

// Migrator applies every NNN_*.sql file under Dir to DB, exactly once,
// in numeric-prefix order (ties broken lexicographically by full filename).
type Migrator struct {
	DB  *sql.DB
	Dir string
	Log zerolog.Logger
}

// New builds a Migrator.
func New(db *sql.DB, dir string, log zerolog.Logger) *Migrator {
	return &Migrator{DB: db, Dir: dir, Log: log}
}

type migrationFile struct {
	name   string
	prefix int
	path   string
}

// Run ensures schema_migrations exists, discovers pending files, and applies
// each inside its own transaction. It returns nil only once every file is
// either already recorded or freshly applied; any failure aborts with the
// offending file's transaction rolled back and nothing recorded for it.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return fmt.Errorf("migrate: ensure schema_migrations: %w", err)
	}

	files, err := m.discover()
	if err != nil {
		return err
	}

	applied, err := m.appliedNames(ctx)
	if err != nil {
		return fmt.Errorf("migrate: read schema_migrations: %w", err)
	}

	for _, f := range files {
		if applied[f.name] {
			m.Log.Debug().Str("file", f.name).Msg("migration already applied, skipping")
			continue
		}
		if err := m.apply(ctx, f); err != nil {
			return &Error{File: f.name, Err: err}
		}
		m.Log.Info().Str("file", f.name).Msg("migration applied")
	}
	return nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			migration_name TEXT NOT NULL UNIQUE,
			executed_at TIMESTAMP NOT NULL
		)`)
	return err
}

func (m *Migrator) discover() ([]migrationFile, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("migrate: read dir %s: %w", m.Dir, err)
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := filenamePattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		prefix, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		files = append(files, migrationFile{
			name:   e.Name(),
			prefix: prefix,
			path:   filepath.Join(m.Dir, e.Name()),
		})
	}

	// Numeric prefix order; two files sharing a prefix are an undefined
	// ordering per spec, resolved here by a documented, stable tie-break on
	// the full filename so the result is at least deterministic.
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].prefix != files[j].prefix {
			return files[i].prefix < files[j].prefix
		}
		return files[i].name < files[j].name
	})
	return files, nil
}

func (m *Migrator) appliedNames(ctx context.Context) (map[string]bool, error) {
	rows, err := m.DB.QueryContext(ctx, `SELECT migration_name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, f migrationFile) error {
	script, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	for i, stmt := range splitStatements(string(script)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (migration_name, executed_at) VALUES (?, ?)`,
		f.name, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// splitStatements splits a SQL script into individual statements on ';'
// boundaries that are not inside a single- or double-quoted string literal,
// so literals like 'Disponible' or values containing ';' survive intact.
func splitStatements(script string) []string {
	var stmts []string
	var cur strings.Builder
	var inSingle, inDouble bool

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			cur.WriteRune(c)
		case c == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteRune(c)
		case c == ';' && !inSingle && !inDouble:
			stmts = append(stmts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		stmts = append(stmts, cur.String())
	}
	return stmts
}
