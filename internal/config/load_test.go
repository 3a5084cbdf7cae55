package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/condocore/condo-manager/internal/config"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadApp_Valid(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "app.json", `{
		"host": "0.0.0.0",
		"port": 8080,
		"secret_key": "super-secret",
		"debug": false,
		"data_path": "./data",
		"log_level": "info"
	}`)

	cfg, err := config.LoadApp(p)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "0.0.0.0", cfg.Host)
}

func TestLoadApp_MissingFile(t *testing.T) {
	_, err := config.LoadApp(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadApp_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "app.json", `{"host":"0.0.0.0","port":0,"secret_key":"x","data_path":"./data"}`)
	_, err := config.LoadApp(p)
	require.Error(t, err)
}

func TestLoadDatabase_SQLiteRequiresPath(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "database.json", `{
		"type": "sqlite",
		"migrations_path": "./data/migrations",
		"timeout_ms": 30000
	}`)
	_, err := config.LoadDatabase(p)
	require.Error(t, err)
}

func TestLoadLogging_Valid(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "logging.json", `{
		"global": {"enabled": true, "level": "info"},
		"handlers": {
			"console": {"enabled": true, "level": "info"},
			"file": {"enabled": false, "level": "debug"},
			"error_file": {"enabled": false, "level": "error"},
			"file_path": "./data/app.log",
			"rotation_size_bytes": 10485760
		},
		"loggers": {
			"store": {"level": "debug"}
		}
	}`)

	cfg, err := config.LoadLogging(p)
	require.NoError(t, err)
	require.Equal(t, config.LevelInfo, cfg.Global.Level)
	require.Equal(t, config.LevelDebug, cfg.Loggers["store"].Level)
}
