package chat

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/models"
	"github.com/avelar/chatly-be/internal/services"
)

// Router classifies chat messages and dispatches them: public messages fan
// out to every session, private messages go to exactly one resolved
// recipient session. It is stateless over the session registry and the user
// directory.
type Router struct {
	registry  *SessionRegistry
	directory services.UserDirectoryProvider
	transport Transport
}

// NewRouter creates a Router over the given registry, directory, and
// transport capability.
func NewRouter(registry *SessionRegistry, directory services.UserDirectoryProvider, transport Transport) *Router {
	return &Router{registry: registry, directory: directory, transport: transport}
}

// HandleJoin binds the sender's username to the invoking session and
// re-broadcasts the JOIN verbatim. Presence status is not touched here; that
// is the presence coordinator's job. If the username was bound to another
// live session, that session is closed (last bind wins).
func (rt *Router) HandleJoin(sessionID string, msg models.ChatMessage) {
	if evicted, ok := rt.registry.Bind(sessionID, msg.Sender); ok {
		log.Info().Str("username", msg.Sender).Str("evicted_session", evicted).
			Msg("New login evicted prior session")
		rt.transport.CloseSession(evicted)
	}

	msg.Type = models.MessageJoin
	msg.Timestamp = time.Now()
	rt.transport.Broadcast(msg)
}

// HandleChat broadcasts a public CHAT or TYPING message to every session.
func (rt *Router) HandleChat(msg models.ChatMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	rt.transport.Broadcast(msg)
}

// HandlePrivate delivers a message to the recipient's session only. A
// missing recipient field or an unresolved recipient session drops the
// message silently: the sender gets no delivery-failure signal. That is a
// documented limitation of the protocol, not an error path.
func (rt *Router) HandlePrivate(msg models.ChatMessage) {
	if msg.Recipient == "" {
		return
	}

	sessionID, ok := rt.registry.Resolve(msg.Recipient)
	if !ok {
		log.Debug().Str("recipient", msg.Recipient).Msg("Dropping private message for offline recipient")
		return
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if !rt.transport.SendTo(sessionID, msg) {
		log.Debug().Str("recipient", msg.Recipient).Str("session_id", sessionID).
			Msg("Private message dropped by transport")
	}
}

// ListOnlineUsers is a pass-through to the directory's online snapshot.
func (rt *Router) ListOnlineUsers() ([]models.User, error) {
	return rt.directory.ListOnline()
}

// LookupUser is a pass-through to the directory's username lookup.
func (rt *Router) LookupUser(username string) (models.User, error) {
	return rt.directory.GetByUsername(username)
}
