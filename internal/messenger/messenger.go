// ABOUTME: Messenger service: sending, thread retrieval, unread aggregation.
// ABOUTME: OpenThread marks a conversation read before re-reading, so counts never lag.

package messenger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/coven-messenger/internal/store"
)

// ValidationError reports a rejected message payload.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// MessageStore defines what the service needs from storage
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *store.Message) error
	Conversation(ctx context.Context, userA, userB int64) ([]*store.Message, error)
	MarkConversationRead(ctx context.Context, ownerID, peerID int64) (int64, error)
	UnreadCounts(ctx context.Context, ownerID int64) (map[int64]int, error)
}

// Directory defines what the service needs from the user directory
type Directory interface {
	ListOthers(ctx context.Context, excludingID int64) ([]*store.User, error)
}

// Service composes the message store and the directory into the
// conversation-level operations the UI consumes.
type Service struct {
	store     MessageStore
	directory Directory
	logger    *slog.Logger
}

// New creates a new messenger service
func New(messageStore MessageStore, dir Directory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     messageStore,
		directory: dir,
		logger:    logger.With("component", "messenger"),
	}
}

// PeerConversation pairs a directory entry with its unread count for the
// conversation list view.
type PeerConversation struct {
	Peer   *store.User
	Unread int
}

// OpenedThread is the result of opening a conversation: its full message
// history, after the pending unread messages were marked read.
type OpenedThread struct {
	Messages   []*store.Message
	MarkedRead int64
}

// Send stores a new message from sender to receiver. The body is trimmed
// of surrounding whitespace; a body that is empty after trimming is
// rejected with a ValidationError and no row is created.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, body string) (*store.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Field: "message body"}
	}

	msg := &store.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}

	s.logger.Debug("sent message", "id", msg.ID, "sender", senderID, "receiver", receiverID)
	return msg, nil
}

// Thread returns the full message history between two users, computed
// fresh on every call. The result is symmetric in its arguments.
func (s *Service) Thread(ctx context.Context, userA, userB int64) ([]*store.Message, error) {
	return s.store.Conversation(ctx, userA, userB)
}

// OpenThread marks every unread message from peer to owner as read, then
// fetches the thread. The mark is awaited before the fetch, so any
// Conversations call issued after OpenThread returns observes the
// updated counts.
func (s *Service) OpenThread(ctx context.Context, ownerID, peerID int64) (*OpenedThread, error) {
	marked, err := s.store.MarkConversationRead(ctx, ownerID, peerID)
	if err != nil {
		return nil, fmt.Errorf("marking conversation read: %w", err)
	}

	messages, err := s.store.Conversation(ctx, ownerID, peerID)
	if err != nil {
		return nil, fmt.Errorf("fetching thread: %w", err)
	}

	if marked > 0 {
		s.logger.Debug("opened thread", "owner", ownerID, "peer", peerID, "marked_read", marked)
	}
	return &OpenedThread{Messages: messages, MarkedRead: marked}, nil
}

// Conversations returns one entry per non-self user, in full-name order,
// each paired with the exact count of unread messages that user has sent
// to the owner. Peers with nothing unread appear with a zero count.
func (s *Service) Conversations(ctx context.Context, ownerID int64) ([]PeerConversation, error) {
	peers, err := s.directory.ListOthers(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing peers: %w", err)
	}

	// One aggregate query instead of a count per peer
	counts, err := s.store.UnreadCounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("counting unread: %w", err)
	}

	conversations := make([]PeerConversation, 0, len(peers))
	for _, peer := range peers {
		conversations = append(conversations, PeerConversation{
			Peer:   peer,
			Unread: counts[peer.ID],
		})
	}

	return conversations, nil
}
