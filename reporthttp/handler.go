// Package reporthttp exposes a StateManager's status reports over HTTP.
// It is a thin adapter kept outside the framework core so embedding
// applications that wire their own CLI or HTTP layer don't pull it in.
package reporthttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GoCodeAlone/bootstrap"
)

// Handler serves initialization reports:
//
//	GET /status          every node's status snapshot keyed by name
//	GET /status/{name}   one node's status snapshot
//	GET /order           the computed initialization order
//	GET /ready           204 when all nodes are complete, 503 otherwise
func Handler(manager *bootstrap.StateManager) http.Handler {
	r := chi.NewRouter()

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, manager.Report())
	})

	r.Get("/status/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		status, err := manager.Status(name)
		if err != nil {
			if errors.Is(err, bootstrap.ErrInitializerNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, status.Snapshot())
	})

	r.Get("/order", func(w http.ResponseWriter, _ *http.Request) {
		order, err := manager.InitializationOrder()
		if err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	})

	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if manager.IsAllComplete() {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "initializing"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
