// Package server exposes the operator JSON surface. It is a thin adapter:
// every route delegates to the admin service, which owns the semantics.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/admin"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/httpmw"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

type Options struct {
	Admin  *admin.Service
	Logger *log.Logger
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Admin == nil {
		return nil, errors.New("admin service is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "pickyourdifficulty",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("POST /api/admin/reload", func(w http.ResponseWriter, r *http.Request) {
		if err := opts.Admin.Reload(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("POST /api/admin/reset", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Player string `json:"player"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if strings.TrimSpace(body.Player) == "" {
			writeError(w, http.StatusBadRequest, errors.New("player is required"))
			return
		}
		opts.Admin.Reset(world.PlayerID(body.Player))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "player": body.Player})
	})

	mux.HandleFunc("POST /api/admin/force-set", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Player     string `json:"player"`
			Difficulty string `json:"difficulty"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if strings.TrimSpace(body.Player) == "" || strings.TrimSpace(body.Difficulty) == "" {
			writeError(w, http.StatusBadRequest, errors.New("player and difficulty are required"))
			return
		}
		if err := opts.Admin.ForceSet(world.PlayerID(body.Player), body.Difficulty); err != nil {
			if errors.Is(err, admin.ErrUnknownDifficulty) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"player":     body.Player,
			"difficulty": body.Difficulty,
		})
	})

	mux.HandleFunc("POST /api/admin/toggle-overlay", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Player string `json:"player"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if strings.TrimSpace(body.Player) == "" {
			writeError(w, http.StatusBadRequest, errors.New("player is required"))
			return
		}
		visible := opts.Admin.ToggleOverlay(world.PlayerID(body.Player))
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"player":  body.Player,
			"visible": visible,
		})
	})

	mux.HandleFunc("GET /api/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		since := time.Now().Add(-24 * time.Hour)
		if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.New("since must be RFC3339"))
				return
			}
			since = parsed
		}
		stats, err := opts.Admin.Stats(since)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"ok": false, "error": err.Error()})
}
