package models

import "time"

// UserStatus is the presence state of a user.
type UserStatus string

const (
	StatusOnline  UserStatus = "ONLINE"
	StatusOffline UserStatus = "OFFLINE"
)

// User represents a registered chat account. PublicKey is an opaque blob
// supplied by the client for end-to-end encryption; the server never
// interprets it.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose this to the client
	Status       UserStatus `json:"status"`
	PublicKey    string     `json:"publicKey,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
