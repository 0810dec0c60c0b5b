// Package store provides persistent storage for coven-messenger using SQLite.
//
// # Architecture
//
// Storage is split into small consumer-facing interfaces:
//
//   - UserStore: account creation, credential lookup, directory listing
//   - MessageStore: message insertion, thread retrieval, read-state updates
//   - Store: the union of both plus Close
//
// A single SQLiteStore satisfies all of them; services depend only on the
// interface covering their concern.
//
// # Data Models
//
//   - User: A registered account with a unique username and bcrypt password hash
//   - Message: A direct message between two users with a read flag
//
// Both use integer surrogate identifiers assigned by SQLite AUTOINCREMENT, so
// message IDs are strictly increasing in insertion order and are never reused.
// Conversations and unread counts are derived by query, never stored.
//
// # SQLite Configuration
//
// The database runs in WAL mode with foreign keys enforced. The default
// file lives under ~/.local/share/coven-messenger/messenger.db; tests use
// ":memory:".
//
// # Error Handling
//
// ErrNotFound is returned when a requested row does not exist and
// ErrUsernameExists when a username is already taken. All methods take a
// context.Context for cancellation.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore(":memory:") for
// integration tests against real SQLite.
//
// # Migrations
//
// The schema is created idempotently on every start; column migrations use
// pragma_table_info probes before ALTER TABLE, so re-running them is safe.
package store
