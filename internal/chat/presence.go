package chat

import (
	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/models"
	"github.com/avelar/chatly-be/internal/services"
)

// PresenceCoordinator drives the join/leave lifecycle. Identity is bound on
// the explicit JOIN message, not on the transport connect event: a freshly
// connected session stays anonymous until the client announces itself, and
// presence broadcasts fire only after that announcement.
type PresenceCoordinator struct {
	directory services.UserDirectoryProvider
	registry  *SessionRegistry
	router    *Router
	events    services.EventServiceProvider
}

// NewPresenceCoordinator wires the coordinator to the directory, registry,
// router, and event log.
func NewPresenceCoordinator(directory services.UserDirectoryProvider, registry *SessionRegistry, router *Router, events services.EventServiceProvider) *PresenceCoordinator {
	return &PresenceCoordinator{directory: directory, registry: registry, router: router, events: events}
}

// HandleJoin processes a client's JOIN announcement: the router binds the
// session and broadcasts the JOIN, then the refreshed roster goes out so
// every client sees the newcomer immediately.
func (pc *PresenceCoordinator) HandleJoin(sessionID string, msg models.ChatMessage) {
	pc.router.HandleJoin(sessionID, msg)
	pc.broadcastRoster()

	if err := pc.events.CreateEvent(services.EventUserJoin, "info", msg.Sender+" joined the chat", &msg.Sender); err != nil {
		log.Warn().Err(err).Str("username", msg.Sender).Msg("Failed to record join event")
	}
}

// broadcastRoster pushes the current online user list to every session.
func (pc *PresenceCoordinator) broadcastRoster() {
	users, err := pc.directory.ListOnline()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load online users for roster broadcast")
		return
	}
	pc.router.transport.BroadcastUsers(users)
}

// HandleDisconnect processes a transport disconnect. If the session was
// bound, the user is flipped OFFLINE and a LEAVE is broadcast with that
// username as sender. A session that disconnects before joining is a silent
// no-op.
func (pc *PresenceCoordinator) HandleDisconnect(sessionID string) {
	username, bound := pc.registry.Unbind(sessionID)
	if !bound {
		return
	}

	log.Info().Str("username", username).Msg("User disconnected")

	if err := pc.directory.SetOffline(username); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to mark user offline")
	}

	pc.router.HandleChat(models.ChatMessage{
		Type:   models.MessageLeave,
		Sender: username,
	})
	pc.broadcastRoster()

	if err := pc.events.CreateEvent(services.EventUserLeave, "info", username+" left the chat", &username); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed to record leave event")
	}
}
