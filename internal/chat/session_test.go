package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistryBindAndResolve(t *testing.T) {
	r := NewSessionRegistry()

	evicted, ok := r.Bind("s1", "alice")
	assert.False(t, ok)
	assert.Empty(t, evicted)

	sessionID, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "s1", sessionID)

	_, ok = r.Resolve("bob")
	assert.False(t, ok)
}

func TestSessionRegistryLastBindWins(t *testing.T) {
	r := NewSessionRegistry()

	r.Bind("s1", "alice")
	evicted, ok := r.Bind("s2", "alice")
	require.True(t, ok)
	assert.Equal(t, "s1", evicted)

	// The username now resolves to the new session.
	sessionID, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "s2", sessionID)

	// The evicted session's disconnect must not tear down the new binding.
	_, ok = r.Unbind("s1")
	assert.False(t, ok)
	sessionID, ok = r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "s2", sessionID)
}

func TestSessionRegistryRebindSameSession(t *testing.T) {
	r := NewSessionRegistry()

	r.Bind("s1", "alice")
	evicted, ok := r.Bind("s1", "bob")
	assert.False(t, ok)
	assert.Empty(t, evicted)

	// The old reverse entry is released.
	_, ok = r.Resolve("alice")
	assert.False(t, ok)

	sessionID, ok := r.Resolve("bob")
	require.True(t, ok)
	assert.Equal(t, "s1", sessionID)
}

func TestSessionRegistryUnbind(t *testing.T) {
	r := NewSessionRegistry()

	_, ok := r.Unbind("never-bound")
	assert.False(t, ok)

	r.Bind("s1", "alice")
	username, ok := r.Unbind("s1")
	require.True(t, ok)
	assert.Equal(t, "alice", username)

	// Exactly-once per disconnect: a second unbind reports not found.
	_, ok = r.Unbind("s1")
	assert.False(t, ok)
	_, ok = r.Resolve("alice")
	assert.False(t, ok)
}

func TestSessionRegistryConcurrentBinds(t *testing.T) {
	r := NewSessionRegistry()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Bind(fmt.Sprintf("s%d", i), "alice")
		}(i)
	}
	wg.Wait()

	// Exactly one session survives for the username, and it maps back.
	sessionID, ok := r.Resolve("alice")
	require.True(t, ok)
	username, ok := r.Unbind(sessionID)
	require.True(t, ok)
	assert.Equal(t, "alice", username)
}
