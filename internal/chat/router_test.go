package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/chatly-be/internal/models"
	"github.com/avelar/chatly-be/internal/services"
)

// fakeTransport records every dispatch for assertions.
type fakeTransport struct {
	mu         sync.Mutex
	broadcasts []models.ChatMessage
	sends      map[string][]models.ChatMessage
	rosters    [][]models.User
	closed     []string
	sendOK     bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sends: make(map[string][]models.ChatMessage), sendOK: true}
}

func (f *fakeTransport) Broadcast(msg models.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, msg)
}

func (f *fakeTransport) SendTo(sessionID string, msg models.ChatMessage) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sendOK {
		return false
	}
	f.sends[sessionID] = append(f.sends[sessionID], msg)
	return true
}

func (f *fakeTransport) BroadcastUsers(users []models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rosters = append(f.rosters, users)
}

func (f *fakeTransport) CloseSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, sessionID)
}

// fakeDirectory satisfies just enough of the directory for router tests.
type fakeDirectory struct {
	online  []models.User
	offline []string
}

func (f *fakeDirectory) Register(username, email, password string) (models.User, error) {
	return models.User{Username: username, Email: email}, nil
}

func (f *fakeDirectory) Authenticate(identifier, password, publicKey string) (models.User, error) {
	return models.User{Username: identifier, Status: models.StatusOnline}, nil
}

func (f *fakeDirectory) SetOffline(username string) error {
	f.offline = append(f.offline, username)
	return nil
}

func (f *fakeDirectory) ListOnline() ([]models.User, error) {
	return f.online, nil
}

func (f *fakeDirectory) GetByUsername(username string) (models.User, error) {
	for _, u := range f.online {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, services.ErrUserNotFound
}

func TestRouterHandleJoinBroadcastsAndBinds(t *testing.T) {
	transport := newFakeTransport()
	registry := NewSessionRegistry()
	router := NewRouter(registry, &fakeDirectory{}, transport)

	router.HandleJoin("s1", models.ChatMessage{Type: models.MessageJoin, Sender: "alice"})

	require.Len(t, transport.broadcasts, 1)
	assert.Equal(t, models.MessageJoin, transport.broadcasts[0].Type)
	assert.Equal(t, "alice", transport.broadcasts[0].Sender)
	assert.False(t, transport.broadcasts[0].Timestamp.IsZero())

	sessionID, ok := registry.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "s1", sessionID)
	assert.Empty(t, transport.closed)
}

func TestRouterHandleJoinEvictsPriorSession(t *testing.T) {
	transport := newFakeTransport()
	registry := NewSessionRegistry()
	router := NewRouter(registry, &fakeDirectory{}, transport)

	router.HandleJoin("s1", models.ChatMessage{Sender: "alice"})
	router.HandleJoin("s2", models.ChatMessage{Sender: "alice"})

	// Last bind wins: the prior session is closed by the transport.
	assert.Equal(t, []string{"s1"}, transport.closed)
	sessionID, ok := registry.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "s2", sessionID)
}

func TestRouterHandlePrivateDelivery(t *testing.T) {
	transport := newFakeTransport()
	registry := NewSessionRegistry()
	router := NewRouter(registry, &fakeDirectory{}, transport)

	registry.Bind("s-bob", "bob")

	router.HandlePrivate(models.ChatMessage{
		Type:      models.MessageChat,
		Sender:    "alice",
		Recipient: "bob",
		Content:   "hey",
	})

	require.Len(t, transport.sends["s-bob"], 1)
	assert.Equal(t, "hey", transport.sends["s-bob"][0].Content)
	assert.Empty(t, transport.broadcasts, "private messages must never broadcast")
}

func TestRouterHandlePrivateMissingRecipientIsSilentDrop(t *testing.T) {
	transport := newFakeTransport()
	router := NewRouter(NewSessionRegistry(), &fakeDirectory{}, transport)

	// No recipient field: do-nothing policy, no panic, no send.
	router.HandlePrivate(models.ChatMessage{Sender: "alice", Content: "lost"})

	assert.Empty(t, transport.sends)
	assert.Empty(t, transport.broadcasts)
}

func TestRouterHandlePrivateUnknownRecipientIsSilentDrop(t *testing.T) {
	transport := newFakeTransport()
	router := NewRouter(NewSessionRegistry(), &fakeDirectory{}, transport)

	router.HandlePrivate(models.ChatMessage{Sender: "alice", Recipient: "ghost", Content: "boo"})

	assert.Empty(t, transport.sends)
	assert.Empty(t, transport.broadcasts)
}

func TestRouterHandleChatBroadcasts(t *testing.T) {
	transport := newFakeTransport()
	router := NewRouter(NewSessionRegistry(), &fakeDirectory{}, transport)

	router.HandleChat(models.ChatMessage{Type: models.MessageChat, Sender: "alice", Content: "hello all"})

	require.Len(t, transport.broadcasts, 1)
	assert.Equal(t, "hello all", transport.broadcasts[0].Content)
	assert.False(t, transport.broadcasts[0].Timestamp.IsZero())
}

func TestRouterListOnlineUsers(t *testing.T) {
	directory := &fakeDirectory{online: []models.User{
		{Username: "alice", Status: models.StatusOnline},
		{Username: "bob", Status: models.StatusOnline},
	}}
	router := NewRouter(NewSessionRegistry(), directory, newFakeTransport())

	users, err := router.ListOnlineUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
