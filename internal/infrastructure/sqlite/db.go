// Package sqlite stores annotations in a SQLite database using the
// ncruces/go-sqlite3 driver (pure Go, wasm based).
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/log"
)

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guid TEXT NOT NULL UNIQUE,
		path TEXT NOT NULL UNIQUE,
		text_hash TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS spans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		label TEXT NOT NULL,
		text TEXT NOT NULL,
		token_ids TEXT NOT NULL,
		draft INTEGER NOT NULL DEFAULT 0,
		selected INTEGER NOT NULL DEFAULT 0,
		UNIQUE (document_id, position)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_spans_document ON spans(document_id, position);`,
}

// DB is an open annotations database.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if needed) the database at path and brings its
// schema up to date. An existing database is copied to path+".bak" before
// any migration runs.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection keeps pragmas and transactions on the same handle
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.migrate(existed); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug(log.CatDB, "database ready", "path", path)
	return db, nil
}

func (db *DB) migrate(existed bool) error {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version >= len(migrations) {
		return nil
	}

	if existed {
		if err := db.backup(); err != nil {
			return err
		}
	}

	for i := version; i < len(migrations); i++ {
		if _, err := db.conn.Exec(migrations[i]); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
		log.Info(log.CatDB, "applied migration", "version", i+1)
	}
	return nil
}

func (db *DB) backup() error {
	dest := db.path + ".bak"
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing old backup: %w", err)
	}
	if _, err := db.conn.Exec("VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	log.Info(log.CatDB, "backed up database before migration", "backup", dest)
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// AnnotationRepository returns a repository backed by this database.
// Closing the repository closes the database.
func (db *DB) AnnotationRepository() annotations.Repository {
	return newAnnotationRepository(db)
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}
