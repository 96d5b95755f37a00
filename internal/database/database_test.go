package database

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wramwatch/wramwatch/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{
		Host: "db", Port: "5433", Username: "u", Password: "p", Database: "ref",
	})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ref sslmode=disable", dsn)
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.db")
	db, err := OpenSQLite(path, testLogger())
	require.NoError(t, err)
	defer Close(db)

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode;").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
	assert.FileExists(t, path)
}

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite("", testLogger())
	require.NoError(t, err)
	defer Close(db)

	assert.Equal(t, "sqlite", db.Dialector.Name())
}
