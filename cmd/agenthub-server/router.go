package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	coreerrors "github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/manifest"
	"github.com/agenthub-dev/agenthub/core/store"
)

const maxRequestBytes = 1 << 20

func newRouter(registry *store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "agenthub-registry",
			"version": version,
			"status":  "ok",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/agents", handleRegister(registry))
		api.Get("/agents", handleList(registry))
		api.Get("/agents/{name}", handleGet(registry))
		api.Patch("/agents/{name}", handleUpdateLifecycle(registry))
		api.Delete("/agents/{name}", handleDelete(registry))
		api.Get("/search", handleSearch(registry))
	})
	return r
}

func handleRegister(registry *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if err := manifest.ValidateJSON(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var m manifest.Manifest
		if err := json.Unmarshal(raw, &m); err != nil {
			writeError(w, http.StatusBadRequest, "malformed manifest JSON")
			return
		}
		if m.LifecycleState == "" {
			m.LifecycleState = manifest.StateActive
		}
		for i, p := range m.Protocols {
			m.Protocols[i] = manifest.NormalizeProtocol(string(p))
		}
		if err := manifest.EnsureAgentID(&m); err != nil {
			writeClassifiedError(w, err)
			return
		}
		stored, err := registry.Register(m, time.Now())
		if err != nil {
			writeClassifiedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, stored)
	}
}

func handleList(registry *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var state manifest.LifecycleState
		if raw := r.URL.Query().Get("state"); raw != "" {
			parsed, ok := manifest.ParseLifecycleState(raw)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown lifecycle state: %q", raw))
				return
			}
			state = parsed
		}
		agents, err := registry.List(state, queryLimit(r))
		if err != nil {
			writeClassifiedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "count": len(agents)})
	}
}

func handleGet(registry *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := registry.Get(chi.URLParam(r, "name"))
		if err != nil {
			writeClassifiedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func handleUpdateLifecycle(registry *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			LifecycleState string `json:"lifecycle_state"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		state, ok := manifest.ParseLifecycleState(body.LifecycleState)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown lifecycle state: %q", body.LifecycleState))
			return
		}
		name := chi.URLParam(r, "name")
		if err := registry.UpdateLifecycle(name, state, time.Now()); err != nil {
			writeClassifiedError(w, err)
			return
		}
		m, err := registry.Get(name)
		if err != nil {
			writeClassifiedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func handleDelete(registry *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := registry.Delete(chi.URLParam(r, "name")); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSearch(registry *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capability := r.URL.Query().Get("capability")
		freeText := r.URL.Query().Get("q")
		if capability == "" && freeText == "" {
			writeError(w, http.StatusBadRequest, "either capability or q is required")
			return
		}
		agents, err := registry.Search(capability, freeText, queryLimit(r))
		if err != nil {
			writeClassifiedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "count": len(agents)})
	}
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeClassifiedError maps the error taxonomy onto HTTP statuses so remote
// clients can rebuild the same categories on their side.
func writeClassifiedError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch coreerrors.CategoryOf(err) {
	case coreerrors.CategoryInvalidInput:
		status = http.StatusBadRequest
	case coreerrors.CategoryNotFound:
		status = http.StatusNotFound
	case coreerrors.CategoryConflict:
		status = http.StatusConflict
	}
	writeError(w, status, err.Error())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		fmt.Printf("%s %s %d %s\n", r.Method, r.URL.Path, recorder.status, time.Since(started).Round(time.Millisecond))
	})
}
