package handlers

import (
	"net/http"

	"github.com/video-stream/subreflow/internal/db"
)

type HealthHandler struct {
	database *db.Database
	version  string
}

func NewHealthHandler(database *db.Database, version string) *HealthHandler {
	return &HealthHandler{database: database, version: version}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.database.DB().PingContext(r.Context()); err != nil {
		jsonError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"status": "ok", "version": h.version}, http.StatusOK)
}
