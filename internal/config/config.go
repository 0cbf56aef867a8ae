package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full YAML configuration for the difficulty engine. It is
// loaded wholesale and replaced wholesale on reload; nothing mutates a
// loaded Config in place.
type Config struct {
	Version      string       `yaml:"version" json:"version"`
	Settings     Settings     `yaml:"settings" json:"settings"`
	Difficulties []Difficulty `yaml:"difficulties" json:"difficulties"`
}

// Difficulty is one selectable profile.
type Difficulty struct {
	Name           string   `yaml:"name" json:"name"`
	GraceSeconds   int      `yaml:"grace_seconds" json:"grace_seconds"`
	DespawnSeconds int      `yaml:"despawn_seconds" json:"despawn_seconds"`
	Icon           string   `yaml:"icon" json:"icon"`
	Permission     string   `yaml:"permission" json:"permission,omitempty"`
	Slot           int      `yaml:"slot" json:"slot"`
	Commands       []string `yaml:"commands" json:"commands,omitempty"`
	WelcomeMessage string   `yaml:"welcome_message" json:"welcome_message,omitempty"`
}

type Settings struct {
	FallbackDifficulty  string   `yaml:"fallback_difficulty" json:"fallback_difficulty"`
	CooldownSeconds     int64    `yaml:"cooldown_seconds" json:"cooldown_seconds"`
	AllowReselect       bool     `yaml:"allow_reselect" json:"allow_reselect"`
	RequireConfirmation bool     `yaml:"require_confirmation" json:"require_confirmation"`
	AutoOpenOnJoin      bool     `yaml:"auto_open_on_join" json:"auto_open_on_join"`
	HideUnpermitted     bool     `yaml:"hide_unpermitted" json:"hide_unpermitted"`
	WelcomeEnabled      bool     `yaml:"welcome_enabled" json:"welcome_enabled"`
	VerboseDiagnostics  bool     `yaml:"verbose_diagnostics" json:"verbose_diagnostics"`
	Despawn             Despawn  `yaml:"despawn" json:"despawn"`
	Grace               Grace    `yaml:"grace" json:"grace"`
	Overlays            Overlays `yaml:"overlays" json:"overlays"`
}

type Despawn struct {
	// ReconcileIntervalSeconds <= 0 disables the reconciliation loop.
	ReconcileIntervalSeconds int  `yaml:"reconcile_interval_seconds" json:"reconcile_interval_seconds"`
	EnforceFloor             bool `yaml:"enforce_floor" json:"enforce_floor"`
	// FloorSeconds is the baseline despawn time profile-derived TTLs are
	// clamped up to when EnforceFloor is set. Explicit per-item overrides
	// are never clamped.
	FloorSeconds int `yaml:"floor_seconds" json:"floor_seconds"`
}

type Grace struct {
	RemindOnLogin         bool   `yaml:"remind_on_login" json:"remind_on_login"`
	RemindIntervalSeconds int    `yaml:"remind_interval_seconds" json:"remind_interval_seconds"`
	ReminderTemplate      string `yaml:"reminder_template" json:"reminder_template,omitempty"`
}

type Overlays struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Text    string `yaml:"text" json:"text"`
}

func (s *Settings) ApplyDefaults() {
	if s.FallbackDifficulty == "" {
		s.FallbackDifficulty = "normal"
	}
	if s.CooldownSeconds == 0 {
		s.CooldownSeconds = 86400
	}
	if s.Despawn.ReconcileIntervalSeconds == 0 {
		s.Despawn.ReconcileIntervalSeconds = 5
	}
	if s.Despawn.FloorSeconds == 0 {
		s.Despawn.FloorSeconds = 300
	}
	if s.Grace.RemindIntervalSeconds == 0 {
		s.Grace.RemindIntervalSeconds = 60
	}
	if s.Grace.ReminderTemplate == "" {
		s.Grace.ReminderTemplate = "grace_reminder"
	}
	if s.Overlays.Text == "" {
		s.Overlays.Text = "Despawns in {seconds}s"
	}
}

func (c *Config) ApplyDefaults() {
	c.Settings.ApplyDefaults()
	if len(c.Difficulties) == 0 {
		c.Difficulties = DefaultDifficulties()
	}
}

// Validate rejects configs the catalog cannot be built from. Callers keep
// serving the previous catalog when a reload fails validation.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i, d := range c.Difficulties {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if name == "" {
			return fmt.Errorf("difficulties[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("difficulties[%d]: duplicate name %q", i, d.Name)
		}
		seen[name] = true
		if d.GraceSeconds < 0 {
			return fmt.Errorf("difficulty %q: grace_seconds must be >= 0", d.Name)
		}
		if d.DespawnSeconds < 0 {
			return fmt.Errorf("difficulty %q: despawn_seconds must be >= 0", d.Name)
		}
	}
	fallback := strings.ToLower(strings.TrimSpace(c.Settings.FallbackDifficulty))
	if !seen[fallback] {
		return fmt.Errorf("settings: fallback_difficulty %q is not a configured difficulty", c.Settings.FallbackDifficulty)
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return &c, nil
}
