package models

import "time"

// MessageType classifies a chat message.
type MessageType string

const (
	MessageChat   MessageType = "CHAT"
	MessageJoin   MessageType = "JOIN"
	MessageLeave  MessageType = "LEAVE"
	MessageTyping MessageType = "TYPING"
)

// ChatMessage is a single chat wire event. Recipient is set only for private
// messages. Messages are ephemeral and never written to the database.
type ChatMessage struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content,omitempty"`
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
