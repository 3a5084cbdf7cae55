package flags_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/condocore/condo-manager/internal/flags"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newFlagsTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`CREATE TABLE feature_flags (id INTEGER PRIMARY KEY, flag_name TEXT UNIQUE, is_enabled BOOLEAN, description TEXT)`)
	require.NoError(t, err)
	return db
}

func TestIsEnabled_S5_MissingFlagFailsOpen(t *testing.T) {
	db := newFlagsTestDB(t, "flags1")
	svc := flags.New(db, zerolog.Nop())
	require.True(t, svc.IsEnabled(context.Background(), "finance"))
}

func TestIsEnabled_ExplicitlyDisabled(t *testing.T) {
	db := newFlagsTestDB(t, "flags2")
	_, err := db.Exec(`INSERT INTO feature_flags (flag_name, is_enabled) VALUES ('finance', 0)`)
	require.NoError(t, err)
	svc := flags.New(db, zerolog.Nop())
	require.False(t, svc.IsEnabled(context.Background(), "finance"))
}

func TestIsEnabled_ExplicitlyEnabled(t *testing.T) {
	db := newFlagsTestDB(t, "flags3")
	_, err := db.Exec(`INSERT INTO feature_flags (flag_name, is_enabled) VALUES ('analytics', 1)`)
	require.NoError(t, err)
	svc := flags.New(db, zerolog.Nop())
	require.True(t, svc.IsEnabled(context.Background(), "analytics"))
}

func TestIsEnabled_DBErrorFailsOpen(t *testing.T) {
	db := newFlagsTestDB(t, "flags4")
	db.Close() // force every subsequent query to error
	svc := flags.New(db, zerolog.Nop())
	require.True(t, svc.IsEnabled(context.Background(), "anything"))
}
