package monitoring

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/avelar/chatly-be/internal/services"
	ws "github.com/avelar/chatly-be/internal/websocket"
)

// Stats is the system.stats payload pushed to all connected sessions.
type Stats struct {
	ConnectedClients int       `json:"connectedClients"`
	OnlineUsers      int       `json:"onlineUsers"`
	CPUPercent       float64   `json:"cpuPercent"`
	MemoryPercent    float64   `json:"memoryPercent"`
	UptimeSeconds    int64     `json:"uptimeSeconds"`
	Timestamp        time.Time `json:"timestamp"`
}

// StatUpdater periodically samples host and hub metrics and broadcasts them
// over the websocket hub.
type StatUpdater struct {
	hub          *ws.Hub
	directory    services.UserDirectoryProvider
	events       services.EventServiceProvider
	startedAt    time.Time
	ticker       *time.Ticker
	done         chan bool
	lastCPUAlert time.Time
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(hub *ws.Hub, directory services.UserDirectoryProvider, events services.EventServiceProvider) *StatUpdater {
	return &StatUpdater{
		hub:       hub,
		directory: directory,
		events:    events,
		startedAt: time.Now(),
		done:      make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(15 * time.Second)
	defer su.ticker.Stop()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.broadcastStats()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

func (su *StatUpdater) broadcastStats() {
	stats := Stats{
		ConnectedClients: su.hub.SessionCount(),
		UptimeSeconds:    int64(time.Since(su.startedAt).Seconds()),
		Timestamp:        time.Now(),
	}

	if online, err := su.directory.ListOnline(); err == nil {
		stats.OnlineUsers = len(online)
	} else {
		log.Warn().Err(err).Msg("StatUpdater: Failed to count online users")
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
	}

	su.checkAndAlertForHighCPU(stats.CPUPercent)
	su.hub.BroadcastFrame(ws.NewStatsFrame(stats))
}

func (su *StatUpdater) checkAndAlertForHighCPU(cpuPercent float64) {
	const highCPUThreshold = 90.0
	const alertCooldown = 15 * time.Minute

	if cpuPercent <= highCPUThreshold {
		return
	}
	if time.Since(su.lastCPUAlert) < alertCooldown {
		return
	}

	msg := fmt.Sprintf("High CPU usage (%.1f%%) on chat host.", cpuPercent)
	if err := su.events.CreateEvent(services.EventAlertCPU, "warn", msg, nil); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Failed to record CPU alert")
	}
	su.lastCPUAlert = time.Now()
}
