package selection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallbackNormal() string { return "normal" }

func TestGet_AbsentReturnsFallbackView(t *testing.T) {
	s := NewStore(t.TempDir(), fallbackNormal)

	assert.Equal(t, "normal", s.Get("p1"))
	assert.False(t, s.HasSelected("p1"))
	assert.Zero(t, s.Len())
}

func TestHasSelected_DistinguishesRecordEqualToFallback(t *testing.T) {
	s := NewStore(t.TempDir(), fallbackNormal)

	s.Set("p1", "normal")
	assert.Equal(t, "normal", s.Get("p1"))
	assert.True(t, s.HasSelected("p1"), "explicit record equal to fallback is still a record")
}

func TestSet_CanonicalizesName(t *testing.T) {
	s := NewStore(t.TempDir(), fallbackNormal)
	s.Set("p1", "  HARD ")
	assert.Equal(t, "hard", s.Get("p1"))
}

func TestClear_ReturnsToFallbackView(t *testing.T) {
	s := NewStore(t.TempDir(), fallbackNormal)
	s.Set("p1", "easy")
	s.Clear("p1")
	assert.Equal(t, "normal", s.Get("p1"))
	assert.False(t, s.HasSelected("p1"))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir, fallbackNormal)
	s.Set("p1", "easy")
	s.Set("p2", "hard")
	require.NoError(t, s.Save())

	s2 := NewStore(dir, fallbackNormal)
	require.NoError(t, s2.Load())
	assert.Equal(t, "easy", s2.Get("p1"))
	assert.Equal(t, "hard", s2.Get("p2"))
	assert.Equal(t, 2, s2.Len())
}

func TestLoad_SkipsMalformedValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selections.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"p1": "easy", "p2": 42, "p3": ""}`), 0o644))

	s := NewStore(dir, fallbackNormal)
	require.NoError(t, s.Load())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "easy", s.Get("p1"))
	assert.False(t, s.HasSelected("p2"))
}

func TestLoad_MissingFile(t *testing.T) {
	s := NewStore(t.TempDir(), fallbackNormal)
	require.NoError(t, s.Load())
	assert.Zero(t, s.Len())
}
