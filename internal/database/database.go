package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrUsernameTaken means another account already uses the username.
	ErrUsernameTaken = fmt.Errorf("%w: username already exists", ErrConflict)

	// ErrEmailTaken means another account already uses the email.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      VARCHAR(50) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	email         VARCHAR(100) UNIQUE,
	full_name     VARCHAR(100),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS books (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       VARCHAR(200) NOT NULL,
	author      VARCHAR(100) NOT NULL,
	year        INTEGER,
	description TEXT,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	owner_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_books_owner_created ON books(owner_id, created_at DESC);
`

const dropSchema = `
DROP TABLE IF EXISTS books;
DROP TABLE IF EXISTS users;
`

// InitDB opens the SQLite database at path and makes sure the schema exists.
// With reset set, both tables are dropped first and every row is lost.
func InitDB(path string, reset bool) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Foreign keys are per connection in SQLite, so they go in the DSN.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err = applySchema(db, reset); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func applySchema(db *sql.DB, reset bool) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if reset {
		if _, err := tx.Exec(dropSchema); err != nil {
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return tx.Commit()
}

// conflictError maps a SQLite unique violation on users to the matching
// sentinel. Other errors pass through unchanged.
func conflictError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	switch {
	case strings.Contains(sqliteErr.Error(), "users.username"):
		return ErrUsernameTaken
	case strings.Contains(sqliteErr.Error(), "users.email"):
		return ErrEmailTaken
	default:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
}
