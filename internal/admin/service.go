// Package admin implements the operator-facing maintenance operations.
// Every call bypasses the player-facing selection gates on purpose.
package admin

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/engine"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/telemetry"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Service struct {
	eng    *engine.Engine
	events telemetry.Repository
	logger *log.Logger
}

func NewService(eng *engine.Engine, events telemetry.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{eng: eng, events: events, logger: logger}
}

// Reset wipes a player's committed selection and cooldown so they go
// through the full selection flow again.
func (s *Service) Reset(p world.PlayerID) {
	s.eng.Selections().Clear(p)
	s.eng.Cooldowns().Clear(p)
	s.record(telemetry.EventAdminReset, telemetry.EventMetadata{"player": string(p)})
	s.logger.Printf("admin: reset %s", p)
}

// ForceSet writes a selection directly, skipping permission and cooldown
// checks, follow-up commands, and the welcome message. The cooldown still
// restarts so the player cannot immediately re-pick.
func (s *Service) ForceSet(p world.PlayerID, name string) error {
	prof, ok := s.eng.Catalog().Resolve(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
	}
	s.eng.Selections().Set(p, prof.Name)
	s.eng.Cooldowns().MarkNow(p, s.eng.Now())
	s.record(telemetry.EventAdminForceSet, telemetry.EventMetadata{
		"player":     string(p),
		"difficulty": prof.Name,
	})
	s.logger.Printf("admin: force-set %s -> %s", p, prof.Name)
	return nil
}

// ToggleOverlay flips the player's despawn-label visibility preference
// and returns the new value.
func (s *Service) ToggleOverlay(p world.PlayerID) bool {
	visible := s.eng.Prefs().Toggle(p)
	s.record(telemetry.EventOverlayToggled, telemetry.EventMetadata{
		"player":  string(p),
		"visible": visible,
	})
	return visible
}

// Reload re-reads the config file and applies it to the running engine.
func (s *Service) Reload() error {
	return s.eng.Reload()
}

// Stats aggregates recorded events since a point in time.
func (s *Service) Stats(since time.Time) (telemetry.Stats, error) {
	return s.eng.Stats(since)
}

func (s *Service) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordEvent(t, md); err != nil {
		s.logger.Printf("admin: record %s: %v", t, err)
	}
}
