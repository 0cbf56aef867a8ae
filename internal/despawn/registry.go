// Package despawn tracks custom despawn countdowns for dropped items and
// reconciles them against live world state. The backing objects are not
// owned by this engine: they can vanish at any moment through pickup,
// natural expiry, unloaded regions, or causes the engine never hears about.
package despawn

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

type entry struct {
	expiresAt int64 // epoch millis
	overlay   world.Overlay
	position  world.Position
}

type persistedEntry struct {
	ExpiresAt int64 `json:"expiresAt"`
}

// Options holds the overlay-facing knobs, replaced on config reload.
type Options struct {
	OverlaysEnabled bool
	OverlayText     string // "{seconds}" is substituted with the countdown
	Verbose         bool
}

// Registry maps tracked item identities to expiry timestamps and overlay
// handles. Registrations persist write-through so a crash between a drop
// and the next tick does not lose the timer.
type Registry struct {
	mu       sync.Mutex
	path     string
	logger   *log.Logger
	locator  world.Locator
	overlays world.OverlayFactory
	opts     Options
	entries  map[world.ObjectID]*entry
}

func NewRegistry(dataDir string, locator world.Locator, overlays world.OverlayFactory, opts Options, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		path:     filepath.Join(dataDir, "despawn_timers.json"),
		logger:   logger,
		locator:  locator,
		overlays: overlays,
		opts:     opts,
		entries:  map[world.ObjectID]*entry{},
	}
}

// SetOptions swaps overlay settings, used on config reload.
func (r *Registry) SetOptions(opts Options) {
	r.mu.Lock()
	r.opts = opts
	r.mu.Unlock()
}

// Recover loads the persisted snapshot at startup. Entries already expired
// while the process was down are discarded; survivors are kept without
// overlays, because the live object must first be located, so overlay
// creation is deferred to the first reconciliation tick.
func (r *Registry) Recover(now time.Time) (kept, discarded int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.entries = map[world.ObjectID]*entry{}
			return 0, 0, nil
		}
		return 0, 0, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return 0, 0, err
	}

	nowMillis := now.UnixMilli()
	loaded := make(map[world.ObjectID]*entry, len(raw))
	for id, v := range raw {
		var pe persistedEntry
		if err := json.Unmarshal(v, &pe); err != nil || pe.ExpiresAt <= 0 {
			continue
		}
		if pe.ExpiresAt <= nowMillis {
			discarded++
			continue
		}
		loaded[world.ObjectID(id)] = &entry{expiresAt: pe.ExpiresAt}
		kept++
	}
	r.entries = loaded

	if discarded > 0 {
		if err := r.persistLocked(); err != nil {
			r.logger.Printf("despawn: prune recovered snapshot: %v", err)
		}
	}
	return kept, discarded, nil
}

// Register tracks item with the given TTL. Registering an identity that is
// already tracked replaces its timer and overlay; the same identity never
// appears twice. The new expiry is persisted before Register returns.
func (r *Registry) Register(item world.Item, ttlSeconds int, now time.Time) {
	if item == nil || ttlSeconds <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := item.ID()
	if prev, ok := r.entries[id]; ok && prev.overlay != nil {
		prev.overlay.Destroy()
	}

	e := &entry{
		expiresAt: now.UnixMilli() + int64(ttlSeconds)*1000,
		position:  item.Position(),
	}
	r.entries[id] = e
	r.attachOverlayLocked(e, ttlSeconds)

	if err := r.persistLocked(); err != nil {
		r.logger.Printf("despawn: persist after register %s: %v", id, err)
	}
}

// Unregister drops the entry and destroys its overlay. Unknown identities
// are a no-op; calling it twice is safe.
func (r *Registry) Unregister(id world.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return
	}
	if e.overlay != nil {
		e.overlay.Destroy()
	}
	delete(r.entries, id)
	if err := r.persistLocked(); err != nil {
		r.logger.Printf("despawn: persist after unregister %s: %v", id, err)
	}
}

// Entry exposes the tracked expiry for inspection.
func (r *Registry) Entry(id world.ObjectID) (expiresAt int64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.entries[id]
	if !found {
		return 0, false
	}
	return e.expiresAt, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Shutdown destroys every live overlay but leaves the persisted snapshot
// untouched so the next start recovers accurate expiries.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.overlay != nil {
			e.overlay.Destroy()
			e.overlay = nil
		}
	}
}

func (r *Registry) attachOverlayLocked(e *entry, secondsLeft int) {
	if !r.opts.OverlaysEnabled || r.overlays == nil {
		return
	}
	o, err := r.overlays.Create(e.position, r.labelFor(secondsLeft))
	if err != nil {
		// Retried on the next reconcile tick.
		if r.opts.Verbose {
			r.logger.Printf("despawn: create overlay: %v", err)
		}
		return
	}
	e.overlay = o
}

func (r *Registry) labelFor(secondsLeft int) string {
	return strings.ReplaceAll(r.opts.OverlayText, "{seconds}", strconv.Itoa(secondsLeft))
}

func (r *Registry) persistLocked() error {
	out := make(map[string]persistedEntry, len(r.entries))
	for id, e := range r.entries {
		out[string(id)] = persistedEntry{ExpiresAt: e.expiresAt}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}
