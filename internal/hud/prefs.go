// Package hud keeps per-player overlay visibility preferences.
package hud

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

// Prefs stores the per-player countdown-overlay toggle. Players default to
// visible; only explicit opt-outs (or re-opt-ins) are recorded.
type Prefs struct {
	mu      sync.RWMutex
	path    string
	visible map[world.PlayerID]bool
}

func NewPrefs(dataDir string) *Prefs {
	return &Prefs{
		path:    filepath.Join(dataDir, "overlay_prefs.json"),
		visible: map[world.PlayerID]bool{},
	}
}

func (p *Prefs) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.visible = map[world.PlayerID]bool{}
			return nil
		}
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	loaded := make(map[world.PlayerID]bool, len(raw))
	for id, v := range raw {
		var on bool
		if err := json.Unmarshal(v, &on); err != nil {
			continue
		}
		loaded[world.PlayerID(id)] = on
	}
	p.visible = loaded
	return nil
}

func (p *Prefs) Save() error {
	p.mu.RLock()
	out := make(map[string]bool, len(p.visible))
	for id, on := range p.visible {
		out[string(id)] = on
	}
	p.mu.RUnlock()

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, b, 0o644)
}

// Visible reports whether player id wants overlays. Unset means visible.
func (p *Prefs) Visible(id world.PlayerID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	on, ok := p.visible[id]
	if !ok {
		return true
	}
	return on
}

// Toggle flips the preference and returns the new value.
func (p *Prefs) Toggle(id world.PlayerID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	on, ok := p.visible[id]
	if !ok {
		on = true
	}
	p.visible[id] = !on
	return !on
}

func (p *Prefs) Set(id world.PlayerID, on bool) {
	p.mu.Lock()
	p.visible[id] = on
	p.mu.Unlock()
}
