package service

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/thumbnailer/internal/metrics"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/storage"
)

// ExpiringService manages time-boxed copies that anyone holding the link may read.
// Expiry is evaluated on every read; nothing runs in the background.
type ExpiringService struct {
	repo    repository.ExpiringImageRepository
	storage storage.Storage
	metrics metrics.Metrics
	now     func() time.Time
}

func NewExpiringService(repo repository.ExpiringImageRepository, storage storage.Storage, m metrics.Metrics) *ExpiringService {
	return &ExpiringService{
		repo:    repo,
		storage: storage,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *ExpiringService) WithClock(now func() time.Time) *ExpiringService {
	s.now = now
	return s
}

// ParseLiveTime reads the live_time form value.
func ParseLiveTime(raw string, present bool) (int, error) {
	if !present {
		return 0, ErrLiveTimeRequired
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidLiveTime, raw)
	}
	if err := ValidateLiveTime(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidateLiveTime accepts live times within the inclusive bounds.
func ValidateLiveTime(seconds int) error {
	if seconds < model.MinLiveTime || seconds > model.MaxLiveTime {
		return ErrInvalidLiveTime
	}
	return nil
}

// Create stores data as a new expiring copy owned by userID.
// The id is allocated first so the storage path can be derived from it.
func (s *ExpiringService) Create(userID, ext string, data []byte, liveSeconds int) (*model.ExpiringImage, error) {
	if err := ValidateLiveTime(liveSeconds); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	img := &model.ExpiringImage{
		ID:          id,
		UserID:      userID,
		StoragePath: ExpiringPath(id, ext),
		LiveTime:    liveSeconds,
		CreatedAt:   s.now().UTC(),
	}

	err := s.storage.Save(img.StoragePath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to save expiring image: %w", err)
	}

	err = s.repo.Create(img)
	if err != nil {
		delErr := s.storage.Delete(img.StoragePath)
		if delErr != nil {
			slog.Error("failed to delete expiring image during cleanup", "error", delErr, "path", img.StoragePath)
		}
		return nil, fmt.Errorf("failed to create expiring image record: %w", err)
	}

	s.metrics.IncExpiringCreated()
	return img, nil
}

// Fetch returns the bytes of a live expiring copy. No ownership check is made.
// The first read past the live window deletes the copy and reports ErrExpired;
// later reads report ErrNotFound.
func (s *ExpiringService) Fetch(fileName string) ([]byte, *model.ExpiringImage, error) {
	if !validFileName(fileName) {
		s.metrics.IncExpiringFetch(metrics.FetchNotFound)
		return nil, nil, ErrNotFound
	}

	img, err := s.repo.ByPath(ExpiringPrefix + fileName)
	if err != nil {
		if errors.Is(err, repository.ErrExpiringImageNotFound) {
			s.metrics.IncExpiringFetch(metrics.FetchNotFound)
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get expiring image: %w", err)
	}

	if img.IsExpired(s.now()) {
		err = s.remove(img)
		if err != nil {
			return nil, nil, err
		}
		s.metrics.IncExpiringFetch(metrics.FetchExpired)
		return nil, nil, ErrExpired
	}

	data, err := storage.ReadAll(s.storage, img.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			s.metrics.IncExpiringFetch(metrics.FetchNotFound)
			return nil, nil, ErrFileMissing
		}
		return nil, nil, fmt.Errorf("failed to read expiring image: %w", err)
	}

	s.metrics.IncExpiringFetch(metrics.FetchServed)
	return data, img, nil
}

// Reap removes every expired copy. It is housekeeping for links nobody reads
// again and is never needed for correctness.
func (s *ExpiringService) Reap() (int, error) {
	now := s.now()
	cutoff := now.Add(-model.MinLiveTime * time.Second).UTC()

	candidates, err := s.repo.CreatedBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring images: %w", err)
	}

	reaped := 0
	for _, img := range candidates {
		if !img.IsExpired(now) {
			continue
		}
		err = s.remove(img)
		if err != nil {
			return reaped, err
		}
		reaped++
	}

	s.metrics.AddExpiringReaped(reaped)
	if reaped > 0 {
		slog.Info("reaped expiring images", "count", reaped)
	}
	return reaped, nil
}

// remove deletes the row first so concurrent readers stop finding it, then the bytes.
func (s *ExpiringService) remove(img *model.ExpiringImage) error {
	err := s.repo.Delete(img.ID)
	if err != nil && !errors.Is(err, repository.ErrExpiringImageNotFound) {
		return fmt.Errorf("failed to delete expiring image record: %w", err)
	}

	delErr := s.storage.Delete(img.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete expiring image from storage", "error", delErr, "path", img.StoragePath)
	}

	slog.Info("expiring image removed", "id", img.ID, "live_time", img.LiveTime, "expired_at", img.ExpiresAt())
	return nil
}
