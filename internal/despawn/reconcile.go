package despawn

import (
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

// TickResult summarizes one reconciliation pass.
type TickResult struct {
	Scanned   int
	Gone      int // backing object missing or invalid
	Expired   int // countdown reached zero
	Skipped   int // region unloaded, entry untouched
	Refreshed int // overlay text updated or created
}

// Removed is the number of entries dropped this tick.
func (t TickResult) Removed() int { return t.Gone + t.Expired }

// Reconcile runs one pass over every tracked entry, resolving each against
// live world state. Entries are independent; their processing order does
// not affect the outcome.
func (r *Registry) Reconcile(now time.Time) TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res TickResult
	nowMillis := now.UnixMilli()
	removed := false

	for id, e := range r.entries {
		res.Scanned++

		item, status := r.locator.Locate(id)
		switch status {
		case world.LocateRegionUnloaded:
			// Transient unavailability. Do not remove, do not touch the
			// overlay, do not move the expiry.
			res.Skipped++
			continue

		case world.LocateGone:
			r.dropLocked(id, e)
			res.Gone++
			removed = true
			continue
		}

		if !item.Valid() {
			r.dropLocked(id, e)
			res.Gone++
			removed = true
			continue
		}

		// Ceiling of the remaining time: an entry with any millis left
		// displays at least 1s and is only expired once its deadline has
		// actually passed.
		secondsLeft := (e.expiresAt - nowMillis + 999) / 1000
		if secondsLeft <= 0 {
			r.dropLocked(id, e)
			res.Expired++
			removed = true
			continue
		}

		e.position = item.Position()
		if e.overlay == nil {
			// Recovered entries and earlier failed creations land here.
			r.attachOverlayLocked(e, int(secondsLeft))
		} else {
			e.overlay.SetText(r.labelFor(int(secondsLeft)))
			e.overlay.Move(e.position)
		}
		if e.overlay != nil {
			res.Refreshed++
		}
	}

	if removed {
		if err := r.persistLocked(); err != nil {
			r.logger.Printf("despawn: prune snapshot after tick: %v", err)
		}
	}
	if r.opts.Verbose && res.Removed() > 0 {
		r.logger.Printf("despawn: tick scanned=%d gone=%d expired=%d skipped=%d", res.Scanned, res.Gone, res.Expired, res.Skipped)
	}
	return res
}

func (r *Registry) dropLocked(id world.ObjectID, e *entry) {
	if e.overlay != nil {
		e.overlay.Destroy()
	}
	delete(r.entries, id)
}
