package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pickyourdifficulty.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "version: \"1\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "normal", cfg.Settings.FallbackDifficulty)
	assert.Equal(t, int64(86400), cfg.Settings.CooldownSeconds)
	assert.Equal(t, 5, cfg.Settings.Despawn.ReconcileIntervalSeconds)
	assert.Equal(t, 300, cfg.Settings.Despawn.FloorSeconds)
	assert.Len(t, cfg.Difficulties, 3)
}

func TestLoad_CustomDifficulties(t *testing.T) {
	path := writeConfig(t, `
version: "1"
settings:
  fallback_difficulty: chill
  cooldown_seconds: 600
difficulties:
  - name: chill
    grace_seconds: 3600
    despawn_seconds: 1200
    icon: white_wool
    slot: 10
  - name: brutal
    grace_seconds: 0
    despawn_seconds: 30
    icon: obsidian
    permission: pyd.select.brutal
    slot: 16
    commands:
      - "console: broadcast {player} went brutal"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Difficulties, 2)
	assert.Equal(t, "chill", cfg.Settings.FallbackDifficulty)
	assert.Equal(t, int64(600), cfg.Settings.CooldownSeconds)
	assert.Equal(t, 3600, cfg.Difficulties[0].GraceSeconds)
	assert.Equal(t, "pyd.select.brutal", cfg.Difficulties[1].Permission)
}

func TestValidate_DuplicateName(t *testing.T) {
	cfg := &Config{
		Settings: Settings{FallbackDifficulty: "easy"},
		Difficulties: []Difficulty{
			{Name: "easy"},
			{Name: "Easy"},
		},
	}
	cfg.Settings.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidate_FallbackMustExist(t *testing.T) {
	cfg := &Config{
		Settings:     Settings{FallbackDifficulty: "missing"},
		Difficulties: []Difficulty{{Name: "easy"}},
	}
	cfg.Settings.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback_difficulty")
}

func TestValidate_NegativeSeconds(t *testing.T) {
	cfg := &Config{
		Settings:     Settings{FallbackDifficulty: "easy"},
		Difficulties: []Difficulty{{Name: "easy", GraceSeconds: -1}},
	}
	cfg.Settings.ApplyDefaults()

	require.Error(t, cfg.Validate())
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "difficulties: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestRuntimeFromEnv(t *testing.T) {
	t.Setenv("PYD_CONFIG", "custom.yml")
	t.Setenv("PYD_DATA_DIR", "/tmp/pyd")

	rt, err := RuntimeFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "custom.yml", rt.ConfigPath)
	assert.Equal(t, "/tmp/pyd", rt.DataDir)
	assert.Equal(t, ":8420", rt.ListenAddr)
}
