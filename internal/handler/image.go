package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/thumbnailer/internal/ctxkeys"
	"github.com/templui/thumbnailer/internal/service"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 32 << 20

type ImageHandler struct {
	imageService *service.ImageService
	maxBodySize  int64
}

func NewImageHandler(imageService *service.ImageService, maxUploadSize int64) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		// Leave room for the other form fields and multipart framing
		maxBodySize: maxUploadSize + 1<<20,
	}
}

type imageItem struct {
	ID            string    `json:"id"`
	OriginalImage string    `json:"original_image"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	images, err := h.imageService.List(user.ID)
	if err != nil {
		slog.Error("failed to list images", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if len(images) == 0 {
		writeJSON(w, http.StatusNotFound, []string{msgNoImages})
		return
	}

	links := h.imageService.Links()
	items := make([]imageItem, 0, len(images))
	for _, image := range images {
		items = append(items, imageItem{
			ID:            image.ID,
			OriginalImage: links.Artifact(image.StoragePath),
			CreatedAt:     image.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string][]string{
				service.FieldOriginalImage: {"The submitted file is too large."},
			})
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	var in service.UploadInput
	if r.MultipartForm != nil {
		headers := r.MultipartForm.File[service.FieldOriginalImage]
		if len(headers) > 0 {
			in.File, err = h.imageService.ReadFile(headers[0])
			if err != nil {
				writeServiceError(w, r, err, msgImageNotFound)
				return
			}
		}
	}
	if in.File == nil {
		_, in.FieldSent = r.PostForm[service.FieldOriginalImage]
	}

	if values, ok := r.PostForm[service.FieldLiveTime]; ok && len(values) > 0 {
		in.LiveTime = values[0]
		in.LiveTimeSent = true
	}

	result, err := h.imageService.Upload(user, in)
	if err != nil {
		writeServiceError(w, r, err, msgImageNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, result.Payload)
}
