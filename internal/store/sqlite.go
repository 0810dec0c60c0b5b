// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/message persistence with automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		profile_pic TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id INTEGER NOT NULL,
		receiver_id INTEGER NOT NULL,
		body TEXT NOT NULL,
		created_at TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (sender_id) REFERENCES users(id),
		FOREIGN KEY (receiver_id) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unread ON messages(receiver_id, is_read)`,
}

// NewSQLiteStore opens (or creates) the database at path, applies the
// schema and any pending migrations, and returns a ready store. Parent
// directories are created as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps readers from blocking the writer
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, logger: logger}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := s.migrateProfilePic(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("SQLite store initialized", "path", path)
	return s, nil
}

// migrateProfilePic adds the profile_pic column to databases created
// before it existed. SQLite has no ADD COLUMN IF NOT EXISTS, so the
// column is probed via pragma_table_info first.
func (s *SQLiteStore) migrateProfilePic() error {
	var exists int
	err := s.db.QueryRow(
		`SELECT 1 FROM pragma_table_info('users') WHERE name = 'profile_pic'`,
	).Scan(&exists)
	if err == nil {
		return nil
	}

	if _, err := s.db.Exec(`ALTER TABLE users ADD COLUMN profile_pic TEXT`); err != nil {
		return fmt.Errorf("adding profile_pic column to users: %w", err)
	}
	s.logger.Info("applied migration", "column", "profile_pic", "table", "users")
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Debug("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
