package hud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisible_DefaultsOn(t *testing.T) {
	p := NewPrefs(t.TempDir())
	assert.True(t, p.Visible("p1"))
}

func TestToggle_FlipsAndReturnsNewValue(t *testing.T) {
	p := NewPrefs(t.TempDir())

	assert.False(t, p.Toggle("p1"))
	assert.False(t, p.Visible("p1"))
	assert.True(t, p.Toggle("p1"))
	assert.True(t, p.Visible("p1"))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewPrefs(dir)
	p.Set("p1", false)
	p.Set("p2", true)
	require.NoError(t, p.Save())

	p2 := NewPrefs(dir)
	require.NoError(t, p2.Load())
	assert.False(t, p2.Visible("p1"))
	assert.True(t, p2.Visible("p2"))
}

func TestLoad_SkipsMalformedValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "overlay_prefs.json"),
		[]byte(`{"p1": false, "p2": "nope"}`), 0o644))

	p := NewPrefs(dir)
	require.NoError(t, p.Load())
	assert.False(t, p.Visible("p1"))
	assert.True(t, p.Visible("p2"), "malformed entry falls back to default")
}
