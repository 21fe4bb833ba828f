// Package websocket is the connection layer: the Hub tracks live sessions
// and fans frames out to them, Clients own one gorilla/websocket connection
// each. The Hub satisfies chat.Transport.
package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/models"
)

// DisconnectHandler is invoked once per session after it has been removed
// from the hub.
type DisconnectHandler func(sessionID string)

// Hub maintains the set of active sessions and delivers frames to them.
// Registration flows through channels consumed by Run; the session map is
// additionally guarded by a mutex so Broadcast and SendTo can run from any
// goroutine.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Client

	// Register requests from new connections.
	Register chan *Client

	// Unregister requests from closing connections.
	Unregister chan *Client

	onDisconnect DisconnectHandler
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// OnDisconnect installs the disconnect callback. Must be called before Run.
func (h *Hub) OnDisconnect(handler DisconnectHandler) {
	h.onDisconnect = handler
}

// Run starts the Hub's session bookkeeping loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.sessions[client.SessionID] = client
			total := len(h.sessions)
			h.mu.Unlock()
			log.Info().Str("session_id", client.SessionID).Int("total_clients", total).Msg("Client connected")

		case client := <-h.Unregister:
			h.mu.Lock()
			current, ok := h.sessions[client.SessionID]
			if ok && current == client {
				delete(h.sessions, client.SessionID)
			}
			total := len(h.sessions)
			h.mu.Unlock()

			if ok && current == client {
				client.closeSend()
				log.Info().Str("session_id", client.SessionID).Int("total_clients", total).Msg("Client disconnected")
				if h.onDisconnect != nil {
					// The handler broadcasts LEAVE and roster frames; run it
					// off the bookkeeping loop so those sends cannot block it.
					go h.onDisconnect(client.SessionID)
				}
			}
		}
	}
}

// Broadcast delivers a chat message to every connected session.
func (h *Hub) Broadcast(msg models.ChatMessage) {
	h.broadcastFrame(NewMessageFrame(msg))
}

// BroadcastUsers delivers a roster snapshot to every connected session.
func (h *Hub) BroadcastUsers(users []models.User) {
	h.broadcastFrame(NewUsersFrame(users))
}

// BroadcastFrame delivers a pre-encoded frame to every connected session.
// Used by the monitoring loop for stats frames.
func (h *Hub) BroadcastFrame(frame []byte) {
	h.broadcastFrame(frame)
}

func (h *Hub) broadcastFrame(frame []byte) {
	if frame == nil {
		return
	}
	for _, client := range h.snapshot() {
		if !client.trySend(frame) {
			h.drop(client)
		}
	}
}

// SendTo delivers a chat message to a single session.
func (h *Hub) SendTo(sessionID string, msg models.ChatMessage) bool {
	return h.SendFrame(sessionID, NewMessageFrame(msg))
}

// SendFrame delivers a pre-encoded frame to a single session.
func (h *Hub) SendFrame(sessionID string, frame []byte) bool {
	if frame == nil {
		return false
	}

	h.mu.RLock()
	client, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	if !client.trySend(frame) {
		h.drop(client)
		return false
	}
	return true
}

// CloseSession force-closes a session's connection. The read pump notices
// and funnels the teardown through the normal unregister path.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.RLock()
	client, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if ok {
		client.Close()
	}
}

// SessionCount returns the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.sessions))
	for _, client := range h.sessions {
		clients = append(clients, client)
	}
	return clients
}

// drop disconnects a client whose send buffer is full. Delivery is
// best-effort; a client that cannot keep up loses its connection rather
// than stalling the hub.
func (h *Hub) drop(client *Client) {
	log.Warn().Str("session_id", client.SessionID).Msg("Client send buffer full, closing connection")
	client.Close()
}
