// Package grace rate-limits "you are still damage-immune" reminders while
// a player is inside their difficulty's grace window.
package grace

import (
	"strconv"
	"sync"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/profile"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/selection"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

// Settings are the reminder knobs, replaced on config reload.
type Settings struct {
	RemindOnLogin   bool
	IntervalSeconds int
	Template        string
}

// Reminder tracks the last reminder timestamp per player. State is purely
// advisory and cleared on logout.
type Reminder struct {
	mu       sync.Mutex
	catalog  *profile.Catalog
	store    *selection.Store
	playtime world.Playtime
	roster   world.Roster
	notify   world.Notifier
	settings Settings
	lastSent map[world.PlayerID]int64 // epoch millis
}

func NewReminder(catalog *profile.Catalog, store *selection.Store, playtime world.Playtime, roster world.Roster, notify world.Notifier, settings Settings) *Reminder {
	return &Reminder{
		catalog:  catalog,
		store:    store,
		playtime: playtime,
		roster:   roster,
		notify:   notify,
		settings: settings,
		lastSent: map[world.PlayerID]int64{},
	}
}

func (r *Reminder) SetSettings(s Settings) {
	r.mu.Lock()
	r.settings = s
	r.mu.Unlock()
}

// InGrace reports whether p is still inside their profile's grace window.
// A zero grace-seconds profile is never in grace; a player whose playtime
// the host cannot report is treated as out of grace.
func (r *Reminder) InGrace(p world.PlayerID) bool {
	remaining, ok := r.remaining(p)
	return ok && remaining > 0
}

func (r *Reminder) remaining(p world.PlayerID) (int64, bool) {
	prof, ok := r.catalog.Resolve(r.store.Get(p))
	if !ok || prof.GraceSeconds <= 0 {
		return 0, false
	}
	elapsed, ok := r.playtime.Elapsed(p)
	if !ok {
		return 0, false
	}
	left := int64(prof.GraceSeconds) - elapsed
	if left < 0 {
		left = 0
	}
	return left, true
}

// OnJoin sends the login-triggered reminder if enabled and p is still in
// grace. It stamps the rate limiter so an interval sweep right after login
// does not double-send.
func (r *Reminder) OnJoin(p world.PlayerID, now time.Time) bool {
	r.mu.Lock()
	enabled := r.settings.RemindOnLogin
	r.mu.Unlock()
	if !enabled {
		return false
	}
	return r.send(p, now)
}

// Sweep walks every online player still in grace and reminds those whose
// last reminder is at least the configured interval ago. Returns the
// number of reminders sent.
func (r *Reminder) Sweep(now time.Time) int {
	sent := 0
	for _, p := range r.roster.Online() {
		if r.send(p, now) {
			sent++
		}
	}
	return sent
}

func (r *Reminder) send(p world.PlayerID, now time.Time) bool {
	remaining, ok := r.remaining(p)
	if !ok || remaining <= 0 {
		return false
	}

	r.mu.Lock()
	interval := int64(r.settings.IntervalSeconds) * 1000
	template := r.settings.Template
	last, seen := r.lastSent[p]
	nowMillis := now.UnixMilli()
	if seen && nowMillis-last < interval {
		r.mu.Unlock()
		return false
	}
	r.lastSent[p] = nowMillis
	r.mu.Unlock()

	r.notify.Send(p, template, map[string]string{
		"seconds_left": strconv.FormatInt(remaining, 10),
	})
	return true
}

// Forget clears p's reminder state on logout so identity reuse does not
// inherit a stale timestamp.
func (r *Reminder) Forget(p world.PlayerID) {
	r.mu.Lock()
	delete(r.lastSent, p)
	r.mu.Unlock()
}
