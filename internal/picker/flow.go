// Package picker drives the player-visible selection flow: browse, pick,
// confirm or cancel, commit.
package picker

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/cooldown"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/profile"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/selection"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/telemetry"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

var (
	ErrNoPermission      = errors.New("player lacks permission for difficulty")
	ErrReselectLocked    = errors.New("difficulty already chosen and reselection is disabled")
	ErrStaleSelection    = errors.New("no pending selection to confirm")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrNotBrowsing       = errors.New("player is not browsing")
	ErrNotConfirming     = errors.New("player has no confirmation open")
)

// CooldownActiveError reports a denied browse with the lockout remaining.
type CooldownActiveError struct {
	Remaining int64
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %ds remaining", e.Remaining)
}

// State is a player's position in the selection flow. Committed and
// Cancelled are terminal transitions, not resting states: both hand
// control back to Browsing or end the session.
type State int

const (
	StateBrowsing State = iota + 1
	StatePendingConfirmation
)

// Settings are the flow knobs, replaced on config reload.
type Settings struct {
	AllowReselect       bool
	RequireConfirmation bool
	HideUnpermitted     bool
	WelcomeEnabled      bool
}

type session struct {
	state   State
	pending string // last clicked difficulty, canonical key
}

// Flow is the selection state machine. One instance serves all players;
// per-player session state is ephemeral and lost on restart, which is
// harmless because a restart closes every open screen.
type Flow struct {
	mu         sync.Mutex
	catalog    *profile.Catalog
	selections *selection.Store
	cooldowns  *cooldown.Tracker
	perms      world.PermissionChecker
	menu       world.MenuRenderer
	sounds     world.SoundPlayer
	notify     world.Notifier
	dispatch   world.CommandDispatcher
	events     telemetry.Repository
	logger     *log.Logger
	settings   Settings
	sessions   map[world.PlayerID]*session
}

type Deps struct {
	Catalog    *profile.Catalog
	Selections *selection.Store
	Cooldowns  *cooldown.Tracker
	Perms      world.PermissionChecker
	Menu       world.MenuRenderer
	Sounds     world.SoundPlayer
	Notify     world.Notifier
	Dispatch   world.CommandDispatcher
	Events     telemetry.Repository
	Logger     *log.Logger
}

func NewFlow(deps Deps, settings Settings) *Flow {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Flow{
		catalog:    deps.Catalog,
		selections: deps.Selections,
		cooldowns:  deps.Cooldowns,
		perms:      deps.Perms,
		menu:       deps.Menu,
		sounds:     deps.Sounds,
		notify:     deps.Notify,
		dispatch:   deps.Dispatch,
		events:     deps.Events,
		logger:     logger,
		settings:   settings,
		sessions:   map[world.PlayerID]*session{},
	}
}

func (f *Flow) SetSettings(s Settings) {
	f.mu.Lock()
	f.settings = s
	f.mu.Unlock()
}

// State reports the player's current flow state; ok is false when no
// session exists.
func (f *Flow) State(p world.PlayerID) (State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[p]
	if !ok {
		return 0, false
	}
	return s.state, true
}

// OpenBrowse starts (or re-opens) the browse screen. Denied when the
// player's cooldown is still running, or when they already committed and
// reselection is disabled; denial produces feedback and no state change.
func (f *Flow) OpenBrowse(p world.PlayerID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if remaining := f.cooldowns.Remaining(p, now); remaining > 0 {
		f.denyLocked(p, "cooldown", "cooldown_active", map[string]string{
			"seconds_left": strconv.FormatInt(remaining, 10),
		})
		return &CooldownActiveError{Remaining: remaining}
	}
	if !f.settings.AllowReselect && f.selections.HasSelected(p) {
		f.denyLocked(p, "reselect_locked", "already_selected", map[string]string{
			"difficulty": f.selections.Get(p),
		})
		return ErrReselectLocked
	}

	f.sessions[p] = &session{state: StateBrowsing}
	f.menu.RenderBrowse(p, f.optionsLocked(p))
	f.sounds.Play(p, world.CueOpen)
	return nil
}

// SelectOption handles a click on a browse option. Valid only from
// Browsing.
func (f *Flow) SelectOption(p world.PlayerID, name string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[p]
	if !ok || s.state != StateBrowsing {
		return ErrNotBrowsing
	}

	prof, ok := f.catalog.Resolve(name)
	if !ok {
		f.denyLocked(p, "unknown_difficulty", "unknown_difficulty", map[string]string{"difficulty": name})
		return ErrUnknownDifficulty
	}
	if !f.perms.Has(p, prof.Permission) {
		f.denyLocked(p, "no_permission", "no_permission", map[string]string{"difficulty": prof.Name})
		return ErrNoPermission
	}

	s.pending = prof.Name
	if !f.settings.RequireConfirmation {
		f.commitLocked(p, prof, now)
		return nil
	}

	s.state = StatePendingConfirmation
	f.menu.RenderConfirm(p, browseOption(prof, true))
	f.sounds.Play(p, world.CueSelect)
	return nil
}

// Confirm handles the confirm button. Valid only from
// PendingConfirmation; a stale or unresolvable pending selection rejects
// cleanly and returns the player to Browsing without side effects, so a
// defensive second Confirm after a commit can never re-run side effects.
func (f *Flow) Confirm(p world.PlayerID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[p]
	if !ok {
		return ErrNotConfirming
	}
	// Confirm clicked straight from the browse screen, or with a pending
	// pick that evaporated: nothing to apply, back to browsing.
	if s.state != StatePendingConfirmation || s.pending == "" {
		s.pending = ""
		f.rejectToBrowseLocked(p, s, "stale_selection")
		return ErrStaleSelection
	}
	prof, ok := f.catalog.Resolve(s.pending)
	if !ok {
		s.pending = ""
		f.rejectToBrowseLocked(p, s, "stale_selection")
		return ErrStaleSelection
	}
	// Selection rules may have changed since the browse step.
	if !f.perms.Has(p, prof.Permission) {
		s.pending = ""
		f.rejectToBrowseLocked(p, s, "no_permission")
		return ErrNoPermission
	}

	f.commitLocked(p, prof, now)
	return nil
}

// Cancel handles the cancel button: clears the pending pick and re-opens
// the browse screen.
func (f *Flow) Cancel(p world.PlayerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[p]
	if !ok || s.state != StatePendingConfirmation {
		return ErrNotConfirming
	}

	s.pending = ""
	s.state = StateBrowsing
	f.menu.RenderBrowse(p, f.optionsLocked(p))
	f.recordLocked(telemetry.EventSelectionCancelled, telemetry.EventMetadata{"player": string(p)})
	return nil
}

// Forget drops the player's ephemeral session on disconnect.
func (f *Flow) Forget(p world.PlayerID) {
	f.mu.Lock()
	delete(f.sessions, p)
	f.mu.Unlock()
}

// commitLocked runs the terminal transition's side effects in strict
// order: record, cooldown, follow-up commands, welcome. Failures are
// logged, never rolled back.
func (f *Flow) commitLocked(p world.PlayerID, prof profile.Profile, now time.Time) {
	f.selections.Set(p, prof.Name)
	f.cooldowns.MarkNow(p, now)

	for _, raw := range prof.Commands {
		actor, cmd := parseCommand(raw)
		if cmd == "" {
			f.logger.Printf("picker: empty follow-up command for %s", prof.Name)
			continue
		}
		f.dispatch.Dispatch(actor, p, cmd)
	}

	if f.settings.WelcomeEnabled && prof.WelcomeMessage != "" {
		f.notify.Send(p, prof.WelcomeMessage, map[string]string{
			"player":     string(p),
			"difficulty": prof.Name,
		})
	}

	delete(f.sessions, p)
	f.menu.CloseMenu(p)
	f.sounds.Play(p, world.CueConfirm)
	f.recordLocked(telemetry.EventDifficultyCommitted, telemetry.EventMetadata{
		"player":     string(p),
		"difficulty": prof.Name,
	})
}

func (f *Flow) rejectToBrowseLocked(p world.PlayerID, s *session, reason string) {
	s.state = StateBrowsing
	f.denyLocked(p, reason, reason, nil)
	f.menu.RenderBrowse(p, f.optionsLocked(p))
}

func (f *Flow) denyLocked(p world.PlayerID, reason, template string, vars map[string]string) {
	f.notify.Send(p, template, vars)
	f.sounds.Play(p, world.CueDenied)
	f.recordLocked(telemetry.EventSelectionDenied, telemetry.EventMetadata{
		"player": string(p),
		"reason": reason,
	})
}

func (f *Flow) recordLocked(t telemetry.EventType, md telemetry.EventMetadata) {
	if f.events == nil {
		return
	}
	if err := f.events.RecordEvent(t, md); err != nil {
		f.logger.Printf("picker: record %s: %v", t, err)
	}
}

// optionsLocked builds the permission-filtered browse list. Unpermitted
// entries are hidden or rendered disabled depending on settings.
func (f *Flow) optionsLocked(p world.PlayerID) []world.BrowseOption {
	all := f.catalog.All()
	out := make([]world.BrowseOption, 0, len(all))
	for _, prof := range all {
		permitted := f.perms.Has(p, prof.Permission)
		if !permitted && f.settings.HideUnpermitted {
			continue
		}
		out = append(out, browseOption(prof, permitted))
	}
	return out
}

func browseOption(prof profile.Profile, enabled bool) world.BrowseOption {
	return world.BrowseOption{
		Name:    prof.Name,
		Icon:    prof.Icon,
		Slot:    prof.Slot,
		Enabled: enabled,
	}
}

// parseCommand splits the actor tag off a follow-up action string. The
// literal prefixes "console:" and "player:" pick the actor; anything else
// runs as console.
func parseCommand(raw string) (world.CommandActor, string) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "console:"):
		return world.ActorConsole, strings.TrimSpace(trimmed[len("console:"):])
	case strings.HasPrefix(lower, "player:"):
		return world.ActorPlayer, strings.TrimSpace(trimmed[len("player:"):])
	default:
		return world.ActorConsole, trimmed
	}
}
