package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelar/chatly-be/internal/models"
)

// UserDirectoryProvider is the authoritative registry of user identity,
// credentials, and presence status. Implementations must be safe for
// concurrent use from any number of connection goroutines.
type UserDirectoryProvider interface {
	// Register creates a new account with status OFFLINE. The plaintext
	// password is bcrypt-hashed before storage. Fails with
	// ErrDuplicateUsername or ErrDuplicateEmail; under concurrent
	// registration of the same key, at most one caller succeeds.
	Register(username, email, password string) (models.User, error)

	// Authenticate matches identifier against the email index first, then
	// the username key, and verifies the password against the stored hash.
	// On success the user is flipped ONLINE and, when publicKey is
	// non-empty, the key is stored. Fails with ErrInvalidCredentials.
	Authenticate(identifier, password, publicKey string) (models.User, error)

	// SetOffline is idempotent; unknown usernames are a no-op.
	SetOffline(username string) error

	// ListOnline returns a point-in-time snapshot of ONLINE users. Callers
	// must not assume any ordering.
	ListOnline() ([]models.User, error)

	// GetByUsername fails with ErrUserNotFound.
	GetByUsername(username string) (models.User, error)
}

// UserService is the SQLite-backed directory. Uniqueness is enforced by the
// UNIQUE constraints on users.username and users.email, so concurrent
// registrations race safely inside the INSERT itself.
type UserService struct {
	db         *sql.DB
	bcryptCost int
}

// NewUserService creates a new SQLite-backed UserService.
func NewUserService(db *sql.DB, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{db: db, bcryptCost: bcryptCost}
}

const userColumns = "id, username, email, password_hash, status, public_key, created_at"

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var publicKey sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Status, &publicKey, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	user.PublicKey = publicKey.String
	return user, nil
}

// Register creates a new user, hashing their password.
func (s *UserService) Register(username, email, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Status:       models.StatusOffline,
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, username, email, password_hash, status) VALUES(?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.Status,
	)
	if err != nil {
		return models.User{}, mapUniqueViolation(err)
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// mapUniqueViolation translates SQLite unique-constraint failures into the
// directory's sentinel errors.
func mapUniqueViolation(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	default:
		return err
	}
}

// Authenticate verifies a user's credentials and marks them ONLINE.
func (s *UserService) Authenticate(identifier, password, publicKey string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", identifier))
	if err == sql.ErrNoRows {
		user, err = scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", identifier))
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user.Status = models.StatusOnline
	if publicKey != "" {
		user.PublicKey = publicKey
		_, err = s.db.Exec("UPDATE users SET status = ?, public_key = ? WHERE username = ?",
			user.Status, user.PublicKey, user.Username)
	} else {
		_, err = s.db.Exec("UPDATE users SET status = ? WHERE username = ?", user.Status, user.Username)
	}
	if err != nil {
		return models.User{}, err
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// SetOffline marks a user OFFLINE. Unknown usernames are a silent no-op.
func (s *UserService) SetOffline(username string) error {
	_, err := s.db.Exec("UPDATE users SET status = ? WHERE username = ?", models.StatusOffline, username)
	return err
}

// ListOnline returns all users currently marked ONLINE.
func (s *UserService) ListOnline() ([]models.User, error) {
	rows, err := s.db.Query(
		"SELECT id, username, email, status, public_key, created_at FROM users WHERE status = ?",
		models.StatusOnline,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var publicKey sql.NullString
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Status, &publicKey, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.PublicKey = publicKey.String
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetByUsername retrieves a single user by username.
func (s *UserService) GetByUsername(username string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}
