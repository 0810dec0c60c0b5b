// ABOUTME: SQLite message persistence, thread retrieval, and read-state updates.
// ABOUTME: Conversations are ordered by created_at then id for a deterministic total order.

package store

import (
	"context"
	"fmt"
	"time"
)

// SaveMessage inserts a new message and assigns msg.ID and msg.CreatedAt.
// Messages always start unread; the is_read column default handles that,
// so no separate update is needed.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (sender_id, receiver_id, body, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		msg.Body,
		msg.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	msg.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting message id: %w", err)
	}
	msg.Read = false

	s.logger.Debug("saved message", "id", msg.ID, "sender", msg.SenderID, "receiver", msg.ReceiverID)
	return nil
}

// Conversation retrieves all messages between two users in either direction.
// Results are ordered by created_at ascending with id as tiebreaker, so the
// order is a deterministic total order even when timestamps collide.
// The query is symmetric: Conversation(a, b) and Conversation(b, a) return
// the same sequence.
func (s *SQLiteStore) Conversation(ctx context.Context, userA, userB int64) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, body, created_at, is_read
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC
	`, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var createdAtStr string
		var isRead int

		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &createdAtStr, &isRead); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing message created_at: %w", err)
		}
		msg.Read = isRead != 0

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// MarkConversationRead marks every unread message from peer to owner as read.
// Returns the number of messages affected. Messages the owner sent are never
// touched, and already-read messages stay read, so repeated calls affect 0 rows.
func (s *SQLiteStore) MarkConversationRead(ctx context.Context, ownerID, peerID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE sender_id = ? AND receiver_id = ? AND is_read = 0
	`, peerID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("marking conversation read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	if affected > 0 {
		s.logger.Debug("marked conversation read", "owner", ownerID, "peer", peerID, "count", affected)
	}
	return affected, nil
}

// UnreadCounts returns unread message counts for the owner, keyed by sender.
// A single aggregate query replaces a per-peer count loop; senders without
// unread messages simply don't appear in the map.
func (s *SQLiteStore) UnreadCounts(ctx context.Context, ownerID int64) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = ? AND is_read = 0
		GROUP BY sender_id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying unread counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int64]int)
	for rows.Next() {
		var senderID int64
		var count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, fmt.Errorf("scanning unread count row: %w", err)
		}
		counts[senderID] = count
	}

	return counts, rows.Err()
}
