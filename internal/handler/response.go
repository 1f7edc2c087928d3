package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/thumbnailer/internal/service"
)

// Error messages returned in {"error": ...} bodies
const (
	msgUnsupportedFormat = "Image format not supported"
	msgNoLiveTime        = "No live_time field"
	msgInvalidLiveTime   = "Live time must be between 300 and 3000 seconds"
	msgForbidden         = "You do not have access to this image"
	msgImageNotFound     = "Image not found"
	msgImageNotExist     = "Image does not exist"
	msgImageExpired      = "Image has expired"
	msgNoImages          = "No images found"
	msgNotFound          = "Not found."
	msgInternal          = "Internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFieldError reports a ValidationError the way form validation does:
// {"<field>": ["<message>"]}.
func writeFieldError(w http.ResponseWriter, verr *service.ValidationError) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{verr.Field: {verr.Message}})
}

// writeServiceError maps the service error taxonomy to a response. Not-found
// bodies differ per route, so callers pass the message for ErrNotFound.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldError(w, verr)
	case errors.Is(err, service.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, msgUnsupportedFormat)
	case errors.Is(err, service.ErrLiveTimeRequired):
		writeError(w, http.StatusBadRequest, msgNoLiveTime)
	case errors.Is(err, service.ErrInvalidLiveTime):
		writeError(w, http.StatusBadRequest, msgInvalidLiveTime)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, service.ErrExpired):
		writeError(w, http.StatusNotFound, msgImageExpired)
	case errors.Is(err, service.ErrFileMissing):
		writeError(w, http.StatusNotFound, msgImageNotFound)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// writeImage sends raw image bytes with a sniffed content type.
func writeImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(data)
	if err != nil {
		slog.Warn("failed to write image", "error", err)
	}
}
