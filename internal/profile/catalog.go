// Package profile holds the difficulty catalog: the static, config-sourced
// lookup every other component reads profile constants from.
package profile

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/config"
)

// Profile is one immutable difficulty profile.
type Profile struct {
	Name           string
	GraceSeconds   int
	DespawnSeconds int
	Icon           string
	Permission     string
	Slot           int
	Commands       []string
	WelcomeMessage string
}

// Catalog is a read-mostly profile lookup. Reload replaces its contents
// atomically; readers never observe a partial update.
type Catalog struct {
	mu       sync.RWMutex
	byName   map[string]Profile
	ordered  []Profile
	fallback string
}

// Key canonicalizes a difficulty name for lookup.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Build constructs a catalog from validated config. It fails if the
// fallback name does not resolve, which Config.Validate should already have
// caught.
func Build(cfg *config.Config) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Replace swaps in a new profile set wholesale.
func (c *Catalog) Replace(cfg *config.Config) error {
	byName := make(map[string]Profile, len(cfg.Difficulties))
	ordered := make([]Profile, 0, len(cfg.Difficulties))
	for _, d := range cfg.Difficulties {
		p := Profile{
			Name:           Key(d.Name),
			GraceSeconds:   d.GraceSeconds,
			DespawnSeconds: d.DespawnSeconds,
			Icon:           d.Icon,
			Permission:     d.Permission,
			Slot:           d.Slot,
			Commands:       append([]string(nil), d.Commands...),
			WelcomeMessage: d.WelcomeMessage,
		}
		byName[p.Name] = p
		ordered = append(ordered, p)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Slot < ordered[j].Slot })

	fallback := Key(cfg.Settings.FallbackDifficulty)
	if _, ok := byName[fallback]; !ok {
		return fmt.Errorf("fallback difficulty %q not in catalog", cfg.Settings.FallbackDifficulty)
	}

	c.mu.Lock()
	c.byName = byName
	c.ordered = ordered
	c.fallback = fallback
	c.mu.Unlock()
	return nil
}

// Resolve canonicalizes name and looks it up.
func (c *Catalog) Resolve(name string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[Key(name)]
	return p, ok
}

// Fallback returns the process-wide fallback profile.
func (c *Catalog) Fallback() Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byName[c.fallback]
}

// FallbackName returns the canonical fallback difficulty name.
func (c *Catalog) FallbackName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fallback
}

// All returns the profiles in GUI slot order.
func (c *Catalog) All() []Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Profile(nil), c.ordered...)
}
