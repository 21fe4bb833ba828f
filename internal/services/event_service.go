package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/chatly-be/internal/models"
)

// Event type identifiers recorded by the presence coordinator and the
// monitoring loop. Chat content never appears in an event.
const (
	EventUserRegistered = "user.registered"
	EventUserLogin      = "user.login"
	EventUserJoin       = "user.join"
	EventUserLeave      = "user.leave"
	EventAlertCPU       = "system.alert.cpu"
)

// EventServiceProvider defines the interface for the presence event log.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, username *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
	PruneEventsBefore(cutoff time.Time) (int64, error)
}

// EventService is the SQLite-backed presence event log.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(eventType, level, message string, username *string) error {
	_, err := s.db.Exec(
		"INSERT INTO events (id, type, level, message, username) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), eventType, level, message, username,
	)
	return err
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, username, created_at FROM events ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.Username, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// PruneEventsBefore deletes events older than the cutoff and reports how
// many rows were removed.
func (s *EventService) PruneEventsBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
