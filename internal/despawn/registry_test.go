package despawn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

var testOpts = Options{
	OverlaysEnabled: true,
	OverlayText:     "Despawns in {seconds}s",
}

func newTestRegistry(t *testing.T) (*Registry, *world.FakeWorld, *world.FakeOverlayFactory, string) {
	t.Helper()
	dir := t.TempDir()
	fw := world.NewFakeWorld()
	fo := world.NewFakeOverlayFactory()
	r := NewRegistry(dir, fw, fo, testOpts, nil)
	return r, fw, fo, dir
}

func readSnapshot(t *testing.T, dir string) map[string]persistedEntry {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, "despawn_timers.json"))
	require.NoError(t, err)
	var out map[string]persistedEntry
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestRegister_PersistsWriteThrough(t *testing.T) {
	r, fw, fo, dir := newTestRegistry(t)
	now := time.Unix(1_900_000_000, 0)

	item := fw.Drop("o1", world.Position{Region: "spawn"})
	r.Register(item, 60, now)

	snap := readSnapshot(t, dir)
	require.Contains(t, snap, "o1")
	assert.Equal(t, now.UnixMilli()+60_000, snap["o1"].ExpiresAt)
	assert.Equal(t, 1, fo.Live())
	assert.Equal(t, "Despawns in 60s", fo.Created[0].Text)
}

func TestRegister_SameIdentityReplaces(t *testing.T) {
	r, fw, fo, _ := newTestRegistry(t)
	now := time.Unix(1_900_000_000, 0)

	item := fw.Drop("o1", world.Position{Region: "spawn"})
	r.Register(item, 60, now)
	r.Register(item, 120, now)

	assert.Equal(t, 1, r.Len())
	exp, ok := r.Entry("o1")
	require.True(t, ok)
	assert.Equal(t, now.UnixMilli()+120_000, exp)
	// First overlay destroyed, replacement live.
	assert.True(t, fo.Created[0].Destroyed)
	assert.Equal(t, 1, fo.Live())
}

func TestRegister_IgnoresNonPositiveTTL(t *testing.T) {
	r, fw, _, _ := newTestRegistry(t)
	item := fw.Drop("o1", world.Position{})
	r.Register(item, 0, time.Now())
	assert.Zero(t, r.Len())
}

func TestUnregister_IsIdempotent(t *testing.T) {
	r, fw, fo, dir := newTestRegistry(t)
	now := time.Unix(1_900_000_000, 0)

	item := fw.Drop("o1", world.Position{})
	r.Register(item, 60, now)

	r.Unregister("o1")
	r.Unregister("o1")

	assert.Zero(t, r.Len())
	assert.Zero(t, fo.Live())
	assert.NotContains(t, readSnapshot(t, dir), "o1")
}

func TestRecover_DiscardsExpiredKeepsLive(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(1_900_000_000, 0)

	snapshot := map[string]persistedEntry{
		"live":    {ExpiresAt: now.UnixMilli() + 500},
		"expired": {ExpiresAt: now.UnixMilli() - 1},
		"zero":    {ExpiresAt: 0},
	}
	b, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "despawn_timers.json"), b, 0o644))

	fo := world.NewFakeOverlayFactory()
	r := NewRegistry(dir, world.NewFakeWorld(), fo, testOpts, nil)
	kept, discarded, err := r.Recover(now)
	require.NoError(t, err)

	assert.Equal(t, 1, kept)
	assert.Equal(t, 1, discarded)
	assert.Equal(t, 1, r.Len())
	// No overlays yet; creation waits for the first reconcile tick.
	assert.Empty(t, fo.Created)
}

func TestRecover_MissingFile(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)
	kept, discarded, err := r.Recover(time.Now())
	require.NoError(t, err)
	assert.Zero(t, kept)
	assert.Zero(t, discarded)
}

func TestShutdown_DestroysOverlaysKeepsSnapshot(t *testing.T) {
	r, fw, fo, dir := newTestRegistry(t)
	now := time.Unix(1_900_000_000, 0)

	r.Register(fw.Drop("o1", world.Position{}), 60, now)
	r.Register(fw.Drop("o2", world.Position{}), 90, now)

	r.Shutdown()

	assert.Zero(t, fo.Live())
	snap := readSnapshot(t, dir)
	assert.Len(t, snap, 2)
}

func TestTTLPolicy_Resolve(t *testing.T) {
	noFloor := TTLPolicy{}
	assert.Equal(t, 45, noFloor.Resolve(0, 45))
	assert.Equal(t, 10, noFloor.Resolve(10, 45))

	floored := TTLPolicy{EnforceFloor: true, FloorSeconds: 300}
	assert.Equal(t, 300, floored.Resolve(0, 45), "profile-derived TTL clamps up to the floor")
	assert.Equal(t, 400, floored.Resolve(0, 400))
	assert.Equal(t, 10, floored.Resolve(10, 45), "explicit override is never clamped")
}
