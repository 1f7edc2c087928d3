package handler

import (
	"net/http"

	"github.com/templui/thumbnailer/internal/ctxkeys"
	"github.com/templui/thumbnailer/internal/service"
)

type AccessHandler struct {
	accessService *service.AccessService
}

func NewAccessHandler(accessService *service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// Serve returns an original or thumbnail to its owner.
func (h *AccessHandler) Serve(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	data, err := h.accessService.AuthorizeAndFetch(user, r.PathValue("ownerID"), r.PathValue("fileName"))
	if err != nil {
		writeServiceError(w, r, err, msgImageNotFound)
		return
	}

	writeImage(w, data)
}
