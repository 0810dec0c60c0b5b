// ABOUTME: Tests for the messenger service: sending, unread accounting, read-then-list.
// ABOUTME: Includes the full register/login/send/open scenario over real SQLite.

package messenger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-messenger/internal/directory"
	"github.com/2389/coven-messenger/internal/store"
)

func newTestService(t *testing.T) (*Service, *directory.Service) {
	t.Helper()
	mockStore := store.NewMockStore()
	dir := directory.New(mockStore, nil)
	return New(mockStore, dir, nil), dir
}

func TestSend_RejectsEmptyBody(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, body := range []string{"", "   ", "\t\n"} {
		_, err := svc.Send(ctx, 1, 2, body)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "body %q should be rejected", body)
	}

	// No row was created
	msgs, err := svc.Thread(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSend_TrimsBody(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, 1, 2, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Body)
	assert.False(t, msg.Read)
	assert.NotZero(t, msg.ID)
}

func TestUnreadAccounting(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	alice, err := dir.Register(ctx, "alice", "pw1", "Alice A", "")
	require.NoError(t, err)
	bob, err := dir.Register(ctx, "bob", "pw2", "Bob B", "")
	require.NoError(t, err)

	// N sends from bob to alice, no intervening mark
	const n = 4
	for i := 0; i < n; i++ {
		_, err := svc.Send(ctx, bob.ID, alice.ID, "ping")
		require.NoError(t, err)
	}
	// Alice's own sends must never count against her
	_, err = svc.Send(ctx, alice.ID, bob.ID, "pong")
	require.NoError(t, err)

	convs, err := svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, bob.ID, convs[0].Peer.ID)
	assert.Equal(t, n, convs[0].Unread)

	opened, err := svc.OpenThread(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), opened.MarkedRead)

	convs, err = svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].Unread)

	// Bob still sees alice's message as unread
	bobConvs, err := svc.Conversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobConvs, 1)
	assert.Equal(t, 1, bobConvs[0].Unread)
}

func TestReadFlagNeverReverts(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	alice, err := dir.Register(ctx, "alice", "pw1", "Alice A", "")
	require.NoError(t, err)
	bob, err := dir.Register(ctx, "bob", "pw2", "Bob B", "")
	require.NoError(t, err)

	_, err = svc.Send(ctx, bob.ID, alice.ID, "hi")
	require.NoError(t, err)

	opened, err := svc.OpenThread(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), opened.MarkedRead)

	// More traffic and repeated opens never flip the flag back
	_, err = svc.Send(ctx, alice.ID, bob.ID, "hey")
	require.NoError(t, err)

	opened, err = svc.OpenThread(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), opened.MarkedRead)
	for _, m := range opened.Messages {
		if m.SenderID == bob.ID {
			assert.True(t, m.Read, "message %d reverted to unread", m.ID)
		}
	}
}

func TestConversations_IncludesPeersWithoutMessages(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	alice, err := dir.Register(ctx, "alice", "pw", "Alice A", "")
	require.NoError(t, err)
	_, err = dir.Register(ctx, "carol", "pw", "Carol C", "")
	require.NoError(t, err)
	_, err = dir.Register(ctx, "bob", "pw", "Bob B", "")
	require.NoError(t, err)

	convs, err := svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "Bob B", convs[0].Peer.FullName)
	assert.Equal(t, "Carol C", convs[1].Peer.FullName)
	assert.Equal(t, 0, convs[0].Unread)
	assert.Equal(t, 0, convs[1].Unread)
}

// TestEndToEndScenario walks the whole flow over a real SQLite database:
// register two users, authenticate, exchange messages, open the thread.
func TestEndToEndScenario(t *testing.T) {
	sqlStore, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	dir := directory.New(sqlStore, nil)
	svc := New(sqlStore, dir, nil)
	ctx := context.Background()

	alice, err := dir.Register(ctx, "alice", "pw1", "Alice A", "")
	require.NoError(t, err)
	bob, err := dir.Register(ctx, "bob", "pw2", "Bob B", "")
	require.NoError(t, err)

	// Login succeeds with the right password, fails with the wrong one
	authed, err := dir.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, authed.ID)

	_, err = dir.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, directory.ErrInvalidCredentials)

	// Bob sends two messages to Alice
	_, err = svc.Send(ctx, bob.ID, alice.ID, "hi")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, alice.ID, "there")
	require.NoError(t, err)

	convs, err := svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, bob.ID, convs[0].Peer.ID)
	assert.Equal(t, 2, convs[0].Unread)

	// Alice opens the thread
	opened, err := svc.OpenThread(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), opened.MarkedRead)
	require.Len(t, opened.Messages, 2)
	assert.Equal(t, "hi", opened.Messages[0].Body)
	assert.Equal(t, "there", opened.Messages[1].Body)

	convs, err = svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].Unread)
}
