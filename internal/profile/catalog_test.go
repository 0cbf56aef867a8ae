package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Settings: config.Settings{FallbackDifficulty: "normal"},
		Difficulties: []config.Difficulty{
			{Name: "Hard", GraceSeconds: 0, DespawnSeconds: 60, Slot: 15},
			{Name: "easy", GraceSeconds: 1800, DespawnSeconds: 900, Slot: 11},
			{Name: "normal", GraceSeconds: 300, DespawnSeconds: 300, Slot: 13},
		},
	}
	cfg.Settings.ApplyDefaults()
	return cfg
}

func TestBuild_ResolvesCanonicalNames(t *testing.T) {
	cat, err := Build(testConfig())
	require.NoError(t, err)

	p, ok := cat.Resolve("  HARD ")
	require.True(t, ok)
	assert.Equal(t, "hard", p.Name)
	assert.Equal(t, 60, p.DespawnSeconds)

	_, ok = cat.Resolve("nightmare")
	assert.False(t, ok)
}

func TestBuild_FallbackMustResolve(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.FallbackDifficulty = "nightmare"
	_, err := Build(cfg)
	require.Error(t, err)
}

func TestAll_SlotOrder(t *testing.T) {
	cat, err := Build(testConfig())
	require.NoError(t, err)

	all := cat.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"easy", "normal", "hard"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestReplace_SwapsWholesale(t *testing.T) {
	cat, err := Build(testConfig())
	require.NoError(t, err)

	next := &config.Config{
		Settings:     config.Settings{FallbackDifficulty: "solo"},
		Difficulties: []config.Difficulty{{Name: "solo", GraceSeconds: 10, DespawnSeconds: 10, Slot: 0}},
	}
	next.Settings.ApplyDefaults()
	next.Settings.FallbackDifficulty = "solo"
	require.NoError(t, cat.Replace(next))

	_, ok := cat.Resolve("easy")
	assert.False(t, ok)
	assert.Equal(t, "solo", cat.Fallback().Name)
}

func TestReplace_BadFallbackLeavesCatalogUntouched(t *testing.T) {
	cat, err := Build(testConfig())
	require.NoError(t, err)

	next := &config.Config{
		Settings:     config.Settings{FallbackDifficulty: "ghost"},
		Difficulties: []config.Difficulty{{Name: "solo"}},
	}
	require.Error(t, cat.Replace(next))

	_, ok := cat.Resolve("easy")
	assert.True(t, ok, "failed replace must not clobber the live catalog")
}
