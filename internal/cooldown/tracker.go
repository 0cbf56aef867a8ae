// Package cooldown tracks per-player selection lockouts against a single
// global window.
package cooldown

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

// Tracker maps a player to the epoch second of their last difficulty
// change. The snapshot file is read once at startup and written wholesale
// on shutdown or reload.
type Tracker struct {
	mu     sync.RWMutex
	path   string
	window int64
	last   map[world.PlayerID]int64
}

func NewTracker(dataDir string, windowSeconds int64) *Tracker {
	return &Tracker{
		path:   filepath.Join(dataDir, "cooldowns.json"),
		window: windowSeconds,
		last:   map[world.PlayerID]int64{},
	}
}

// Load reads the snapshot. A missing file means no prior state; malformed
// values are skipped, never fatal.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.last = map[world.PlayerID]int64{}
			return nil
		}
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	loaded := make(map[world.PlayerID]int64, len(raw))
	for id, v := range raw {
		var ts int64
		if err := json.Unmarshal(v, &ts); err != nil {
			continue
		}
		loaded[world.PlayerID(id)] = ts
	}
	t.last = loaded
	return nil
}

// Save writes the snapshot wholesale.
func (t *Tracker) Save() error {
	t.mu.RLock()
	out := make(map[string]int64, len(t.last))
	for id, ts := range t.last {
		out[string(id)] = ts
	}
	t.mu.RUnlock()

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(t.path, b, 0o644)
}

// SetWindow swaps the global window, used on config reload.
func (t *Tracker) SetWindow(windowSeconds int64) {
	t.mu.Lock()
	t.window = windowSeconds
	t.mu.Unlock()
}

// IsActive reports whether p is still inside the cooldown window. Unknown
// players are never on cooldown.
func (t *Tracker) IsActive(p world.PlayerID, now time.Time) bool {
	return t.Remaining(p, now) > 0
}

// Remaining returns the seconds left on p's cooldown, never negative.
func (t *Tracker) Remaining(p world.PlayerID, now time.Time) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	last, ok := t.last[p]
	if !ok {
		return 0
	}
	rem := t.window - (now.Unix() - last)
	if rem < 0 {
		return 0
	}
	return rem
}

// MarkNow stamps p's last change at now. Called once per successful commit
// and once per admin force-set.
func (t *Tracker) MarkNow(p world.PlayerID, now time.Time) {
	t.mu.Lock()
	t.last[p] = now.Unix()
	t.mu.Unlock()
}

// Clear removes p's record. Cooldowns persist across logout, so this is
// only for admin resets.
func (t *Tracker) Clear(p world.PlayerID) {
	t.mu.Lock()
	delete(t.last, p)
	t.mu.Unlock()
}

// Len reports the number of tracked players.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.last)
}
