// Package chat implements the presence-aware message router: the session
// registry binding transport sessions to usernames, the router classifying
// and dispatching chat messages, and the presence coordinator driving the
// join/leave lifecycle against the user directory.
package chat

import "github.com/avelar/chatly-be/internal/models"

// Transport is the send capability the router needs from the connection
// layer. Both operations are best-effort and non-blocking from the router's
// perspective; delivery failures are not surfaced back into the protocol.
type Transport interface {
	// Broadcast delivers a message to every connected session.
	Broadcast(msg models.ChatMessage)

	// SendTo delivers a message to a single session. It reports false when
	// the session is unknown or its send buffer is full.
	SendTo(sessionID string, msg models.ChatMessage) bool

	// BroadcastUsers pushes a refreshed online roster to every session.
	BroadcastUsers(users []models.User)

	// CloseSession tears down a session's connection, used when a new login
	// evicts a prior session for the same username.
	CloseSession(sessionID string)
}
