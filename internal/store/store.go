// ABOUTME: Store interfaces and data types for coven-messenger persistence
// ABOUTME: Defines User, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when trying to create a user with an existing username.
var ErrUsernameExists = errors.New("username already exists")

// User represents a registered account. Users are created once and never
// updated or deleted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt hash, never the plaintext password
	FullName     string
	ProfilePic   string // opaque URI, empty when no picture was provided
	CreatedAt    time.Time
}

// Message represents a single direct message between two users.
// Read starts false and flips to true exactly once, when the receiver
// opens the conversation.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Body       string
	CreatedAt  time.Time
	Read       bool
}

// UserStore defines the persistence operations backing the user directory.
type UserStore interface {
	// CreateUser inserts a new user and assigns user.ID.
	// Returns ErrUsernameExists if the username is already taken.
	CreateUser(ctx context.Context, user *User) error

	// GetUser retrieves a user by ID. Returns ErrNotFound if no such user.
	GetUser(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by exact username match.
	// Returns ErrNotFound if no such user.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListUsersExcept returns all users except the given one,
	// ordered by full name ascending.
	ListUsersExcept(ctx context.Context, id int64) ([]*User, error)
}

// MessageStore defines the persistence operations backing conversations.
type MessageStore interface {
	// SaveMessage inserts a new message and assigns msg.ID and msg.CreatedAt.
	// IDs are strictly increasing in insertion order.
	SaveMessage(ctx context.Context, msg *Message) error

	// Conversation returns all messages exchanged between the two users,
	// in either direction, ordered by creation time then ID.
	// The result is identical regardless of argument order.
	Conversation(ctx context.Context, userA, userB int64) ([]*Message, error)

	// MarkConversationRead marks every unread message from peer to owner
	// as read and returns the number of rows affected. Messages the owner
	// sent are never touched.
	MarkConversationRead(ctx context.Context, ownerID, peerID int64) (int64, error)

	// UnreadCounts returns, per sender, the number of unread messages
	// addressed to the owner. Senders with no unread messages are absent.
	UnreadCounts(ctx context.Context, ownerID int64) (map[int64]int, error)
}

// Store combines all persistence concerns implemented by the SQLite store.
type Store interface {
	UserStore
	MessageStore

	// Close releases any resources held by the store
	Close() error
}
