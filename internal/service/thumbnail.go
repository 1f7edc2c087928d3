package service

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/templui/thumbnailer/internal/imaging"
	"github.com/templui/thumbnailer/internal/metrics"
	"github.com/templui/thumbnailer/internal/storage"
	"github.com/templui/thumbnailer/internal/tier"
)

type Thumbnail struct {
	Height int
	Path   string
}

type ThumbnailService struct {
	storage storage.Storage
	metrics metrics.Metrics
}

func NewThumbnailService(storage storage.Storage, m metrics.Metrics) *ThumbnailService {
	return &ThumbnailService{
		storage: storage,
		metrics: m,
	}
}

// Generate writes one thumbnail of the given height next to the original and
// returns its path. src is only read, never resized in place.
func (s *ThumbnailService) Generate(src *imaging.Image, originalPath string, height int) (string, error) {
	resized, err := src.ResizeToHeight(height)
	if err != nil {
		return "", fmt.Errorf("failed to resize to %dpx: %w", height, err)
	}

	data, err := resized.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to encode %dpx thumbnail: %w", height, err)
	}

	thumbPath := ThumbnailPath(originalPath, height)
	err = s.storage.Save(thumbPath, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to save %dpx thumbnail: %w", height, err)
	}

	s.metrics.IncThumbnail(height)
	slog.Debug("thumbnail written", "path", thumbPath, "width", resized.Width(), "height", height)
	return thumbPath, nil
}

// GenerateAll writes thumbnails largest first. It stops at the first failure
// and returns the thumbnails written before it alongside the error.
func (s *ThumbnailService) GenerateAll(src *imaging.Image, originalPath string, sizes []int) ([]Thumbnail, error) {
	var written []Thumbnail
	for _, height := range tier.Descending(sizes) {
		thumbPath, err := s.Generate(src, originalPath, height)
		if err != nil {
			return written, err
		}
		written = append(written, Thumbnail{Height: height, Path: thumbPath})
	}
	return written, nil
}
