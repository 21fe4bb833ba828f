package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/models"
)

// Client actions and server frame types.
const (
	ActionJoin    = "chat.join"
	ActionSend    = "chat.send"
	ActionPrivate = "chat.private"
	ActionTyping  = "chat.typing"
	ActionUsers   = "chat.users"

	FrameMessage = "chat.message"
	FrameUsers   = "chat.users"
	FrameStats   = "system.stats"
	FrameError   = "error"
)

// Envelope is the framing for every websocket exchange in both directions.
type Envelope struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func marshalFrame(action string, payload interface{}) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to marshal frame payload")
		return nil
	}
	data, err := json.Marshal(Envelope{Action: action, Payload: raw})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to marshal frame")
		return nil
	}
	return data
}

// NewMessageFrame frames a chat message for delivery to clients.
func NewMessageFrame(msg models.ChatMessage) []byte {
	return marshalFrame(FrameMessage, msg)
}

// NewUsersFrame frames an online-roster snapshot.
func NewUsersFrame(users []models.User) []byte {
	return marshalFrame(FrameUsers, users)
}

// NewStatsFrame frames a system stats report.
func NewStatsFrame(stats interface{}) []byte {
	return marshalFrame(FrameStats, stats)
}

// NewErrorFrame frames a protocol-level error notice.
func NewErrorFrame(text string) []byte {
	return marshalFrame(FrameError, map[string]string{"message": text})
}
