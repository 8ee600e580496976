package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "annotations.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	require.Equal(t, path, db.Path())

	var version int
	require.NoError(t, db.conn.QueryRow("PRAGMA user_version").Scan(&version))
	require.Equal(t, len(migrations), version)

	for _, table := range []string{"documents", "spans"} {
		var name string
		err := db.conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	_, err = os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err), "fresh database is not backed up")
}

func TestNewDB_ForeignKeysEnabled(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var on int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&on))
	require.Equal(t, 1, on)
}

func TestNewDB_ReopenIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err), "up to date database is not backed up")
}

func TestNewDB_BacksUpBeforeMigrating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	_, err = db.conn.Exec(`INSERT INTO documents (guid, path, text_hash, created_at, updated_at) VALUES ('g', 'doc.txt', 'h', 1, 1)`)
	require.NoError(t, err)
	// pretend the file predates the latest migration
	_, err = db.conn.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(path + ".bak")
	require.NoError(t, err)

	backup, err := NewDB(path + ".bak")
	require.NoError(t, err)
	defer func() { _ = backup.Close() }()
	var count int
	require.NoError(t, backup.conn.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count))
	require.Equal(t, 1, count)
}
