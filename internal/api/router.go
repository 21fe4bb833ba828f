package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avelar/chatly-be/internal/api/handlers"
	"github.com/avelar/chatly-be/internal/auth"
	"github.com/avelar/chatly-be/internal/chat"
	"github.com/avelar/chatly-be/internal/config"
	"github.com/avelar/chatly-be/internal/services"
	"github.com/avelar/chatly-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	hub *websocket.Hub,
	chatRouter *chat.Router,
	presence *chat.PresenceCoordinator,
	directory services.UserDirectoryProvider,
	events services.EventServiceProvider,
	tokens *auth.Manager,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(directory, events, tokens)
	userHandler := handlers.NewUserHandler(chatRouter)
	eventHandler := handlers.NewEventHandler(events)
	wsHandler := handlers.NewWebSocketHandler(hub, chatRouter, presence)

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket connection endpoint
		r.Get("/ws", wsHandler.Serve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.With(tokens.Middleware()).Get("/me", authHandler.GetMe)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/online", userHandler.GetOnline)
			r.Get("/{username}", userHandler.Get)
		})

		r.With(tokens.Middleware()).Get("/events", eventHandler.GetRecent)
	})

	return r
}
