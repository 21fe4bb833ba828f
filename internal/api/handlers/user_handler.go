package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/chat"
)

// UserHandler exposes the online roster over HTTP.
type UserHandler struct {
	router *chat.Router
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(router *chat.Router) *UserHandler {
	return &UserHandler{router: router}
}

// GetOnline returns the current online user snapshot.
func (h *UserHandler) GetOnline(w http.ResponseWriter, r *http.Request) {
	users, err := h.router.ListOnlineUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list online users")
		http.Error(w, "Failed to list online users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// Get returns one user's public record by username.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := h.router.LookupUser(username)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("User lookup failed")
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
