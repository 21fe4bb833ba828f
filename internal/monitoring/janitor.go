package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/avelar/chatly-be/internal/services"
)

// Janitor prunes aged entries from the presence event log on a cron
// schedule.
type Janitor struct {
	events    services.EventServiceProvider
	schedule  cron.Schedule
	retention time.Duration
	done      chan bool
}

// NewJanitor parses the cron spec (standard five-field format) and returns a
// janitor retaining events for retentionDays.
func NewJanitor(events services.EventServiceProvider, cronSpec string, retentionDays int) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cronSpec)
	if err != nil {
		return nil, err
	}
	return &Janitor{
		events:    events,
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		done:      make(chan bool),
	}, nil
}

// Run sleeps until each scheduled activation and prunes the event log.
func (j *Janitor) Run() {
	log.Info().Msg("Starting background event janitor...")
	for {
		next := j.schedule.Next(time.Now())
		select {
		case <-j.done:
			log.Info().Msg("Stopping background event janitor.")
			return
		case <-time.After(time.Until(next)):
			j.prune()
		}
	}
}

// Stop halts the janitor.
func (j *Janitor) Stop() {
	j.done <- true
}

func (j *Janitor) prune() {
	cutoff := time.Now().Add(-j.retention)
	removed, err := j.events.PruneEventsBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Janitor: Failed to prune events")
		return
	}
	log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Janitor: Pruned aged events")
}
