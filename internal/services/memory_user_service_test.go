package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelar/chatly-be/internal/models"
)

func newMemoryDirectory() *MemoryUserService {
	return NewMemoryUserService(bcrypt.MinCost)
}

func TestMemoryRegisterAndAuthenticateRoundTrip(t *testing.T) {
	dir := newMemoryDirectory()

	user, err := dir.Register("alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.StatusOffline, user.Status)
	assert.Empty(t, user.PasswordHash, "hash must never leave the directory")

	// By username.
	user, err = dir.Authenticate("alice", "pw1", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.StatusOnline, user.Status)

	// By email.
	user, err = dir.Authenticate("a@x.com", "pw1", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestMemoryRegisterDuplicates(t *testing.T) {
	dir := newMemoryDirectory()

	_, err := dir.Register("alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = dir.Register("alice", "b@x.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = dir.Register("bob", "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryAuthenticateFailures(t *testing.T) {
	dir := newMemoryDirectory()
	_, err := dir.Register("alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = dir.Authenticate("alice", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = dir.Authenticate("nobody", "pw1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemoryAuthenticateStoresPublicKey(t *testing.T) {
	dir := newMemoryDirectory()
	_, err := dir.Register("alice", "a@x.com", "pw1")
	require.NoError(t, err)

	user, err := dir.Authenticate("alice", "pw1", "pk-blob")
	require.NoError(t, err)
	assert.Equal(t, "pk-blob", user.PublicKey)

	// A later login without a key keeps the stored one.
	user, err = dir.Authenticate("alice", "pw1", "")
	require.NoError(t, err)
	assert.Equal(t, "pk-blob", user.PublicKey)
}

func TestMemorySetOfflineExcludesFromListOnline(t *testing.T) {
	dir := newMemoryDirectory()
	_, err := dir.Register("alice", "a@x.com", "pw1")
	require.NoError(t, err)
	_, err = dir.Authenticate("alice", "pw1", "")
	require.NoError(t, err)

	require.NoError(t, dir.SetOffline("alice"))

	online, err := dir.ListOnline()
	require.NoError(t, err)
	assert.Empty(t, online)

	// Idempotent, and unknown users are a no-op.
	require.NoError(t, dir.SetOffline("alice"))
	require.NoError(t, dir.SetOffline("ghost"))
}

func TestMemoryConcurrentRegistrationsSameEmail(t *testing.T) {
	dir := newMemoryDirectory()

	const n = 100
	var wg sync.WaitGroup
	errorsCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := dir.Register(fmt.Sprintf("user%d", i), "shared@x.com", "pw")
			errorsCh <- err
		}(i)
	}
	wg.Wait()
	close(errorsCh)

	var successes, dupEmails int
	for err := range errorsCh {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrDuplicateEmail):
			dupEmails++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, dupEmails)
}

func TestMemoryConcurrentRegistrationsSameUsername(t *testing.T) {
	dir := newMemoryDirectory()

	const n = 50
	var wg sync.WaitGroup
	errorsCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := dir.Register("alice", fmt.Sprintf("u%d@x.com", i), "pw")
			errorsCh <- err
		}(i)
	}
	wg.Wait()
	close(errorsCh)

	var successes, dupUsernames int
	for err := range errorsCh {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrDuplicateUsername):
			dupUsernames++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, dupUsernames)
}

func TestMemoryListOnlineIsASnapshot(t *testing.T) {
	dir := newMemoryDirectory()
	_, err := dir.Register("alice", "a@x.com", "pw1")
	require.NoError(t, err)
	_, err = dir.Authenticate("alice", "pw1", "")
	require.NoError(t, err)

	online, err := dir.ListOnline()
	require.NoError(t, err)
	require.Len(t, online, 1)

	// Mutating the snapshot must not touch directory state.
	online[0].Status = models.StatusOffline
	again, err := dir.ListOnline()
	require.NoError(t, err)
	assert.Len(t, again, 1)
}
