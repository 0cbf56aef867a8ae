// Package selection is the source of truth for which difficulty each
// player is on.
package selection

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/profile"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

// Store maps players to their committed difficulty name. Absent players
// read as the catalog fallback, but that view is never written back; only
// HasSelected can tell the two apart.
type Store struct {
	mu       sync.RWMutex
	path     string
	fallback func() string
	names    map[world.PlayerID]string
}

// NewStore builds a store persisting under dataDir. fallback supplies the
// current fallback difficulty name; it is consulted per read so a config
// reload takes effect without touching stored records.
func NewStore(dataDir string, fallback func() string) *Store {
	return &Store{
		path:     filepath.Join(dataDir, "selections.json"),
		fallback: fallback,
		names:    map[world.PlayerID]string{},
	}
}

// Load reads the snapshot; missing file means no prior selections and
// malformed values are skipped.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.names = map[world.PlayerID]string{}
			return nil
		}
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	loaded := make(map[world.PlayerID]string, len(raw))
	for id, v := range raw {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			continue
		}
		if name == "" {
			continue
		}
		loaded[world.PlayerID(id)] = profile.Key(name)
	}
	s.names = loaded
	return nil
}

// Save writes the snapshot wholesale.
func (s *Store) Save() error {
	s.mu.RLock()
	out := make(map[string]string, len(s.names))
	for id, name := range s.names {
		out[string(id)] = name
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

// Get returns p's difficulty name, or the fallback view when p has no
// record.
func (s *Store) Get(p world.PlayerID) string {
	s.mu.RLock()
	name, ok := s.names[p]
	s.mu.RUnlock()
	if !ok {
		return s.fallback()
	}
	return name
}

// HasSelected reports whether p has a committed record. A record equal to
// the fallback name still counts as selected.
func (s *Store) HasSelected(p world.PlayerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[p]
	return ok
}

// Set commits p's difficulty.
func (s *Store) Set(p world.PlayerID, name string) {
	s.mu.Lock()
	s.names[p] = profile.Key(name)
	s.mu.Unlock()
}

// Clear removes p's record, returning them to the fallback view.
func (s *Store) Clear(p world.PlayerID) {
	s.mu.Lock()
	delete(s.names, p)
	s.mu.Unlock()
}

// Len reports the number of committed records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}
