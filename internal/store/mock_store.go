// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu         sync.RWMutex
	users      map[int64]*User   // keyed by user ID
	byUsername map[string]int64  // username -> user ID
	messages   []*Message        // insertion order
	nextUserID int64
	nextMsgID  int64
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:      make(map[int64]*User),
		byUsername: make(map[string]int64),
		nextUserID: 1,
		nextMsgID:  1,
	}
}

// CreateUser stores a new user, assigning the next ID.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUsername[user.Username]; exists {
		return ErrUsernameExists
	}

	user.ID = m.nextUserID
	m.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	// Make a copy to avoid external modification
	u := *user
	m.users[u.ID] = &u
	m.byUsername[u.Username] = u.ID

	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := *u
	return &result, nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}

	result := *m.users[id]
	return &result, nil
}

// ListUsersExcept returns all users except the given one, ordered by full name.
func (m *MockStore) ListUsersExcept(ctx context.Context, id int64) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []*User
	for _, u := range m.users {
		if u.ID == id {
			continue
		}
		result := *u
		users = append(users, &result)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].FullName != users[j].FullName {
			return users[i].FullName < users[j].FullName
		}
		return users[i].ID < users[j].ID
	})

	return users, nil
}

// SaveMessage stores a new message, assigning the next ID.
func (m *MockStore) SaveMessage(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = m.nextMsgID
	m.nextMsgID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.Read = false

	stored := *msg
	m.messages = append(m.messages, &stored)

	return nil
}

// Conversation returns all messages between the two users in either direction.
func (m *MockStore) Conversation(ctx context.Context, userA, userB int64) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Message
	for _, msg := range m.messages {
		between := (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA)
		if !between {
			continue
		}
		c := *msg
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// MarkConversationRead marks unread peer->owner messages as read.
func (m *MockStore) MarkConversationRead(ctx context.Context, ownerID, peerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64
	for _, msg := range m.messages {
		if msg.SenderID == peerID && msg.ReceiverID == ownerID && !msg.Read {
			msg.Read = true
			affected++
		}
	}

	return affected, nil
}

// UnreadCounts returns unread message counts for the owner, keyed by sender.
func (m *MockStore) UnreadCounts(ctx context.Context, ownerID int64) (map[int64]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int64]int)
	for _, msg := range m.messages {
		if msg.ReceiverID == ownerID && !msg.Read {
			counts[msg.SenderID]++
		}
	}

	return counts, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)
