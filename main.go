package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/api"
	"github.com/avelar/chatly-be/internal/auth"
	"github.com/avelar/chatly-be/internal/chat"
	"github.com/avelar/chatly-be/internal/config"
	"github.com/avelar/chatly-be/internal/database"
	"github.com/avelar/chatly-be/internal/logger"
	"github.com/avelar/chatly-be/internal/monitoring"
	"github.com/avelar/chatly-be/internal/services"
	"github.com/avelar/chatly-be/internal/websocket"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Pick the directory backend: SQLite for persistence, memory for
	// ephemeral deployments and tests.
	var directory services.UserDirectoryProvider
	var events services.EventServiceProvider

	switch cfg.StoreBackend {
	case "memory":
		directory = services.NewMemoryUserService(cfg.BcryptCost)
		events = services.NewMemoryEventService()
		log.Info().Msg("Using in-memory store backend")
	default:
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}

		directory = services.NewUserService(db, cfg.BcryptCost)
		events = services.NewEventService(db)
		log.Info().Str("path", cfg.DatabasePath).Msg("Using sqlite store backend")
	}

	// Set up the session layer: hub, registry, router, presence.
	hub := websocket.NewHub()
	registry := chat.NewSessionRegistry()
	chatRouter := chat.NewRouter(registry, directory, hub)
	presence := chat.NewPresenceCoordinator(directory, registry, chatRouter, events)
	hub.OnDisconnect(presence.HandleDisconnect)
	go hub.Run()

	tokens := auth.NewManager(cfg.JWTSecret)

	// Background stats broadcast and event log pruning.
	statUpdater := monitoring.NewStatUpdater(hub, directory, events)
	go statUpdater.Run()

	janitor, err := monitoring.NewJanitor(events, cfg.JanitorCron, cfg.EventRetentionDays)
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.JanitorCron).Msg("Invalid janitor cron spec")
	}
	go janitor.Run()

	router := api.NewRouter(cfg, hub, chatRouter, presence, directory, events, tokens)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()
	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
