package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/chatly-be/internal/models"
)

// memoryEventCap bounds the in-memory log so a long-lived process without a
// janitor run doesn't grow without limit.
const memoryEventCap = 1000

// MemoryEventService is a ring-buffer event log for the memory backend.
type MemoryEventService struct {
	mu     sync.Mutex
	events []models.Event
}

// NewMemoryEventService creates an empty in-memory event log.
func NewMemoryEventService() *MemoryEventService {
	return &MemoryEventService{}
}

// CreateEvent appends an event, evicting the oldest entry when full.
func (s *MemoryEventService) CreateEvent(eventType, level, message string, username *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		Username:  username,
		CreatedAt: time.Now(),
	})
	if len(s.events) > memoryEventCap {
		s.events = s.events[len(s.events)-memoryEventCap:]
	}
	return nil
}

// GetRecentEvents returns up to limit events, newest first.
func (s *MemoryEventService) GetRecentEvents(limit int) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]models.Event, 0, limit)
	for i := len(s.events) - 1; i >= len(s.events)-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// PruneEventsBefore drops events older than the cutoff.
func (s *MemoryEventService) PruneEventsBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, event := range s.events {
		if event.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, event)
	}
	s.events = kept
	return removed, nil
}
