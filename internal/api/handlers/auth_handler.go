package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/auth"
	"github.com/avelar/chatly-be/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	directory services.UserDirectoryProvider
	events    services.EventServiceProvider
	tokens    *auth.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(directory services.UserDirectoryProvider, events services.EventServiceProvider, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{directory: directory, events: events, tokens: tokens}
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests. Identifier may be a
// username or an email address.
type LoginPayload struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	PublicKey  string `json:"publicKey,omitempty"`
}

// Signup handles new user registration.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		http.Error(w, "username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.directory.Register(payload.Username, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) || errors.Is(err, services.ErrDuplicateEmail) {
			writeError(w, err.Error(), http.StatusConflict)
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	if err := h.events.CreateEvent(services.EventUserRegistered, "info", user.Username+" registered", &user.Username); err != nil {
		log.Warn().Err(err).Msg("Failed to record registration event")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.directory.Authenticate(payload.Identifier, payload.Password, payload.PublicKey)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("identifier", payload.Identifier).Msg("Failed authentication attempt")
			writeError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Str("identifier", payload.Identifier).Msg("Authentication failed")
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := h.events.CreateEvent(services.EventUserLogin, "info", user.Username+" logged in", &user.Username); err != nil {
		log.Warn().Err(err).Msg("Failed to record login event")
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.directory.GetByUsername(claims.Username)
	if err != nil {
		log.Warn().Err(err).Str("username", claims.Username).Msg("User from token not found")
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
