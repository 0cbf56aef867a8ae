package telemetry

import "time"

type EventType string

const (
	EventDifficultyCommitted EventType = "difficulty_committed"
	EventSelectionDenied     EventType = "selection_denied"
	EventSelectionCancelled  EventType = "selection_cancelled"
	EventTimerRegistered     EventType = "timer_registered"
	EventTimerRemoved        EventType = "timer_removed"
	EventTimerExpired        EventType = "timer_expired"
	EventReconcileTick       EventType = "reconcile_tick"
	EventReminderSent        EventType = "reminder_sent"
	EventOverlayToggled      EventType = "overlay_toggled"
	EventAdminReset          EventType = "admin_reset"
	EventAdminForceSet       EventType = "admin_force_set"
	EventConfigReloaded      EventType = "config_reloaded"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
