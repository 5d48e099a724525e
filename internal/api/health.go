package api

import (
	"log/slog"
	"net/http"
)

type healthHandler struct {
	db     Pinger
	index  Counter
	logger *slog.Logger
}

// health is a liveness probe. Returns 200 with {"status":"ok"}.
func (h *healthHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// ready is a readiness probe: verifies database connectivity and that the
// vector index holds at least one entry. A live socket with an empty index
// cannot serve a single recommendation, so it is not ready.
func (h *healthHandler) ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Warn("readiness check failed", "error", err)
			h.unavailable(w)
			return
		}
	}
	if h.index != nil {
		count, err := h.index.Count(r.Context())
		if err != nil {
			h.logger.Warn("readiness check failed", "error", err)
			h.unavailable(w)
			return
		}
		if count == 0 {
			h.logger.Warn("readiness check failed", "error", "vector index is empty")
			h.unavailable(w)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
}

func (h *healthHandler) unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status": "unavailable",
	}, h.logger)
}
