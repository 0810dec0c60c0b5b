// Package messenger implements the conversation-level operations over the
// message store: sending, thread retrieval, the read-state transition, and
// the unread-count aggregation for the conversation list.
//
// The ordering contract callers rely on: OpenThread completes the mark-read
// update before it fetches anything, so a Conversations call issued after
// OpenThread returns always reflects the mark.
package messenger
