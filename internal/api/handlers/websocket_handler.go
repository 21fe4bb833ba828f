package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/chat"
	"github.com/avelar/chatly-be/internal/models"
	ws "github.com/avelar/chatly-be/internal/websocket"
)

// WebSocketHandler upgrades HTTP connections and dispatches chat frames to
// the router and presence coordinator.
type WebSocketHandler struct {
	hub      *ws.Hub
	router   *chat.Router
	presence *chat.PresenceCoordinator
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, router *chat.Router, presence *chat.PresenceCoordinator) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, router: router, presence: presence}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump(h.handleFrame)
}

// handleFrame processes one frame received from a websocket client. The
// session stays anonymous until a chat.join frame binds a username to it.
func (h *WebSocketHandler) handleFrame(client *ws.Client, raw []byte) {
	var env ws.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("session_id", client.SessionID).Msg("Error decoding websocket frame")
		return
	}

	var msg models.ChatMessage
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			log.Warn().Err(err).Str("action", env.Action).Msg("Error decoding frame payload")
			return
		}
	}

	switch env.Action {
	case ws.ActionJoin:
		if msg.Sender == "" {
			return
		}
		h.presence.HandleJoin(client.SessionID, msg)

	case ws.ActionSend:
		msg.Type = models.MessageChat
		h.router.HandleChat(msg)

	case ws.ActionTyping:
		msg.Type = models.MessageTyping
		h.router.HandleChat(msg)

	case ws.ActionPrivate:
		msg.Type = models.MessageChat
		h.router.HandlePrivate(msg)

	case ws.ActionUsers:
		users, err := h.router.ListOnlineUsers()
		if err != nil {
			log.Error().Err(err).Msg("Failed to list online users for roster request")
			return
		}
		h.hub.SendFrame(client.SessionID, ws.NewUsersFrame(users))

	default:
		log.Warn().Str("action", env.Action).Msg("Unknown websocket action received")
		h.hub.SendFrame(client.SessionID, ws.NewErrorFrame("Unknown action: "+env.Action))
	}
}
