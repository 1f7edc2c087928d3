package handler

import (
	"net/http"

	"github.com/templui/thumbnailer/internal/service"
)

type ExpiringHandler struct {
	expiringService *service.ExpiringService
}

func NewExpiringHandler(expiringService *service.ExpiringService) *ExpiringHandler {
	return &ExpiringHandler{expiringService: expiringService}
}

// Serve returns a live expiring copy to anyone holding the link.
func (h *ExpiringHandler) Serve(w http.ResponseWriter, r *http.Request) {
	data, _, err := h.expiringService.Fetch(r.PathValue("fileName"))
	if err != nil {
		writeServiceError(w, r, err, msgImageNotExist)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeImage(w, data)
}
