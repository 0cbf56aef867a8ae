package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/admin"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/config"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/engine"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/telemetry"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

func newTestHandler(t *testing.T) (http.Handler, *engine.Engine) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Settings: config.Settings{
			FallbackDifficulty: "normal",
			CooldownSeconds:    86400,
			Despawn:            config.Despawn{ReconcileIntervalSeconds: -1},
			Grace:              config.Grace{RemindIntervalSeconds: -1},
		},
		Difficulties: config.DefaultDifficulties(),
	}
	cfg.Settings.ApplyDefaults()
	cfgPath := filepath.Join(dir, "pickyourdifficulty.yml")
	b, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, b, 0o644))

	events := telemetry.NewMemoryRepository()
	eng, err := engine.NewEngine(cfg, engine.Deps{
		ConfigPath: cfgPath,
		DataDir:    filepath.Join(dir, "data"),
		Locator:    world.NewFakeWorld(),
		Overlays:   world.NewFakeOverlayFactory(),
		Perms:      world.NewFakePerms(),
		Menu:       world.NewFakeMenu(),
		Sounds:     world.NewFakeSounds(),
		Notify:     world.NewFakeNotifier(),
		Dispatch:   world.NewFakeDispatcher(),
		Roster:     world.NewFakeRoster(),
		Playtime:   world.NewFakePlaytime(),
		Events:     events,
		Clock:      engine.NewFakeClock(time.Unix(1_900_000_000, 0)),
	})
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	t.Cleanup(func() { _ = eng.Close() })

	h, err := NewHandler(Options{Admin: admin.NewService(eng, events, nil)})
	require.NoError(t, err)
	return h, eng
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pickyourdifficulty"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestResetEndpoint(t *testing.T) {
	h, eng := newTestHandler(t)
	eng.Selections().Set("p1", "easy")

	rec := doJSON(t, h, http.MethodPost, "/api/admin/reset", `{"player":"p1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, eng.Selections().HasSelected("p1"))
}

func TestResetRequiresPlayer(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/admin/reset", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForceSetEndpoint(t *testing.T) {
	h, eng := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/admin/force-set", `{"player":"p1","difficulty":"hard"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hard", eng.Selections().Get("p1"))
}

func TestForceSetUnknownDifficultyIs404(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/admin/force-set", `{"player":"p1","difficulty":"nightmare"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleOverlayEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/admin/toggle-overlay", `{"player":"p1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"visible":false`)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/toggle-overlay", `{"player":"p1"}`)
	assert.Contains(t, rec.Body.String(), `"visible":true`)
}

func TestStatsEndpoint(t *testing.T) {
	h, eng := newTestHandler(t)
	eng.Selections().Set("p1", "easy")

	rec := doJSON(t, h, http.MethodGet, "/api/admin/stats?since=1970-01-01T00:00:00Z", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"event_counts"`)

	rec = doJSON(t, h, http.MethodGet, "/api/admin/stats?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/admin/reset", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWrongMethodIs405(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/admin/reload", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
