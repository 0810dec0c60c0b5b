// ABOUTME: Tests for SQLite store lifecycle: schema creation, reopening, migrations.
// ABOUTME: Uses a temporary on-disk database to exercise persistence across opens.

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary on-disk SQLite store for testing.
func setupTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store, dbPath
}

func TestStore_SchemaIsIdempotent(t *testing.T) {
	store, dbPath := setupTestStore(t)
	ctx := context.Background()

	user := &User{Username: "alice", PasswordHash: "h", FullName: "Alice A"}
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.Close())

	// Reopening must not disturb existing rows
	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	store, dbPath := setupTestStore(t)
	ctx := context.Background()

	alice := &User{Username: "alice", PasswordHash: "h", FullName: "Alice A"}
	require.NoError(t, store.CreateUser(ctx, alice))
	bob := &User{Username: "bob", PasswordHash: "h", FullName: "Bob B"}
	require.NoError(t, store.CreateUser(ctx, bob))

	msg := &Message{SenderID: bob.ID, ReceiverID: alice.ID, Body: "hi"}
	require.NoError(t, store.SaveMessage(ctx, msg))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	msgs, err := reopened.Conversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Body)
	assert.False(t, msgs[0].Read)
}

func TestStore_ProfilePicMigration(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "old.db")

	// Simulate a database created before the profile_pic column existed
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
	`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, password_hash, full_name, created_at) VALUES (?, ?, ?, ?)`,
		"alice", "h", "Alice A", time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "", got.ProfilePic)
}

func TestStore_CreatesParentDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestStore_TimestampRoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Second)
	user := &User{Username: "alice", PasswordHash: "h", FullName: "Alice A", CreatedAt: created}
	require.NoError(t, store.CreateUser(ctx, user))

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created), "created_at changed across round trip: %v vs %v", got.CreatedAt, created)
}
