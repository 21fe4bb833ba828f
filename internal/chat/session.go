package chat

import "sync"

// SessionRegistry maps opaque transport session IDs to bound usernames. It
// holds non-owning username references into the directory's key space: a
// binding may outlive the user record it names, and lookups must tolerate
// that.
//
// One live session per username: Bind is last-bind-wins, evicting any prior
// session bound to the same username.
type SessionRegistry struct {
	mu     sync.Mutex
	byID   map[string]string // sessionID -> username
	byUser map[string]string // username -> sessionID
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byID:   make(map[string]string),
		byUser: make(map[string]string),
	}
}

// Bind records sessionID -> username, overwriting any previous mapping for
// that session. If another live session is already bound to the username,
// that session is evicted and its ID returned so the transport can close it.
func (r *SessionRegistry) Bind(sessionID, username string) (evicted string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Rebinding this session to a new name releases its old reverse entry.
	if prev, bound := r.byID[sessionID]; bound && r.byUser[prev] == sessionID {
		delete(r.byUser, prev)
	}

	if prior, bound := r.byUser[username]; bound && prior != sessionID {
		delete(r.byID, prior)
		evicted, ok = prior, true
	}

	r.byID[sessionID] = username
	r.byUser[username] = sessionID
	return evicted, ok
}

// Unbind removes the binding for sessionID and returns the username that had
// been bound. It reports false for sessions that were never bound or were
// already unbound, and is safe to call exactly once per disconnect.
func (r *SessionRegistry) Unbind(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, bound := r.byID[sessionID]
	if !bound {
		return "", false
	}
	delete(r.byID, sessionID)
	// An evicted session's username may already point at a newer session;
	// only clear the reverse entry if it is still ours.
	if r.byUser[username] == sessionID {
		delete(r.byUser, username)
	}
	return username, true
}

// Resolve returns the live session for a username, used for private-message
// delivery. It reports false when the user has no live session.
func (r *SessionRegistry) Resolve(username string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessionID, ok := r.byUser[username]
	return sessionID, ok
}
