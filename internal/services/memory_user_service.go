package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelar/chatly-be/internal/models"
)

// MemoryUserService is the in-memory directory. A single mutex guards both
// the username map and the email index so that uniqueness checks and inserts
// are atomic with respect to concurrent registrations.
type MemoryUserService struct {
	mu         sync.Mutex
	byUsername map[string]*models.User
	byEmail    map[string]string // email -> username
	bcryptCost int
}

// NewMemoryUserService creates an empty in-memory directory.
func NewMemoryUserService(bcryptCost int) *MemoryUserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &MemoryUserService{
		byUsername: make(map[string]*models.User),
		byEmail:    make(map[string]string),
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user, hashing their password. The hash is computed
// outside the lock; the uniqueness check and insert happen under it.
func (s *MemoryUserService) Register(username, email, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return models.User{}, ErrDuplicateUsername
	}
	if _, exists := s.byEmail[email]; exists {
		return models.User{}, ErrDuplicateEmail
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Status:       models.StatusOffline,
		CreatedAt:    time.Now(),
	}
	s.byUsername[username] = user
	s.byEmail[email] = username

	return sanitized(user), nil
}

// Authenticate verifies a user's credentials and marks them ONLINE.
func (s *MemoryUserService) Authenticate(identifier, password, publicKey string) (models.User, error) {
	s.mu.Lock()
	user, ok := s.lookupLocked(identifier)
	if !ok {
		s.mu.Unlock()
		return models.User{}, ErrInvalidCredentials
	}
	hash := user.PasswordHash
	s.mu.Unlock()

	// bcrypt comparison is slow; do it outside the lock.
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-fetch: the record could have changed while unlocked.
	user, ok = s.lookupLocked(identifier)
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	user.Status = models.StatusOnline
	if publicKey != "" {
		user.PublicKey = publicKey
	}
	return sanitized(user), nil
}

// lookupLocked resolves an identifier against the email index first, then
// the username key. Callers must hold s.mu.
func (s *MemoryUserService) lookupLocked(identifier string) (*models.User, bool) {
	if username, ok := s.byEmail[identifier]; ok {
		user, ok := s.byUsername[username]
		return user, ok
	}
	user, ok := s.byUsername[identifier]
	return user, ok
}

// SetOffline marks a user OFFLINE. Unknown usernames are a silent no-op.
func (s *MemoryUserService) SetOffline(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byUsername[username]; ok {
		user.Status = models.StatusOffline
	}
	return nil
}

// ListOnline returns a snapshot of all users currently marked ONLINE.
func (s *MemoryUserService) ListOnline() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for _, user := range s.byUsername {
		if user.Status == models.StatusOnline {
			users = append(users, sanitized(user))
		}
	}
	return users, nil
}

// GetByUsername retrieves a single user by username.
func (s *MemoryUserService) GetByUsername(username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byUsername[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return sanitized(user), nil
}

// sanitized copies a record with the password hash blanked.
func sanitized(user *models.User) models.User {
	out := *user
	out.PasswordHash = ""
	return out
}
