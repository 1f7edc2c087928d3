package handler

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
)

type HomeHandler struct {
	db      *sqlx.DB
	appName string
}

func NewHomeHandler(db *sqlx.DB, appName string) *HomeHandler {
	return &HomeHandler{db: db, appName: appName}
}

// Overview lists the API routes.
func (h *HomeHandler) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name": h.appName,
		"endpoints": map[string]string{
			"images":          "/images/",
			"image_access":    "/images/{owner_id}/images/{file_name}",
			"expiring_images": "/expiring-images/{file_name}",
			"register":        "/auth/register",
			"token":           "/auth/token",
		},
	})
}

func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	err := h.db.PingContext(r.Context())
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": msgNotFound})
}
