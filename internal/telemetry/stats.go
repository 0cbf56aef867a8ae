package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period            string            `json:"period"`
	EventCounts       map[EventType]int `json:"event_counts"`
	Commits           int               `json:"commits"`
	CommitsByProfile  map[string]int    `json:"commits_by_profile"`
	Denials           int               `json:"denials"`
	DenialsByReason   map[string]int    `json:"denials_by_reason"`
	TimersRegistered  int               `json:"timers_registered"`
	TimersExpired     int               `json:"timers_expired"`
	ReconcileTicks    int               `json:"reconcile_ticks"`
	RemindersSent     int               `json:"reminders_sent"`
	ExpiredPerTick    float64           `json:"expired_per_tick"`
}

// CalculateStats aggregates engine behavior from events recorded since a
// point in time.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:           since.Format("2006-01-02"),
		EventCounts:      make(map[EventType]int),
		CommitsByProfile: make(map[string]int),
		DenialsByReason:  make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventDifficultyCommitted:
			stats.Commits++
			if name, ok := metadata["difficulty"].(string); ok {
				stats.CommitsByProfile[name]++
			}
		case EventSelectionDenied:
			stats.Denials++
			if reason, ok := metadata["reason"].(string); ok {
				stats.DenialsByReason[reason]++
			}
		case EventTimerRegistered:
			stats.TimersRegistered++
		case EventTimerExpired:
			stats.TimersExpired++
		case EventReconcileTick:
			stats.ReconcileTicks++
		case EventReminderSent:
			stats.RemindersSent++
		}
	}

	if stats.ReconcileTicks > 0 {
		stats.ExpiredPerTick = float64(stats.TimersExpired) / float64(stats.ReconcileTicks)
	}
	return stats, nil
}
