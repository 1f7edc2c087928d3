package service

import (
	"errors"
	"fmt"

	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/storage"
)

// AccessService serves owned artifacts to their owner only.
type AccessService struct {
	imageRepo repository.ImageRepository
	storage   storage.Storage
}

func NewAccessService(imageRepo repository.ImageRepository, storage storage.Storage) *AccessService {
	return &AccessService{
		imageRepo: imageRepo,
		storage:   storage,
	}
}

// AuthorizeAndFetch returns the artifact fileName from ownerID's directory.
// A caller other than the owner is always refused, whether or not the file exists.
func (s *AccessService) AuthorizeAndFetch(caller *model.User, ownerID, fileName string) ([]byte, error) {
	if caller == nil || caller.ID != ownerID {
		return nil, ErrForbidden
	}

	if !validFileName(fileName) {
		return nil, ErrNotFound
	}

	filePath, err := s.resolve(caller.ID, fileName)
	if err != nil {
		return nil, err
	}

	data, err := storage.ReadAll(s.storage, filePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrFileMissing
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return data, nil
}

// resolve prefers a recorded original and falls back to any file in the
// caller's directory, which is where thumbnails live.
func (s *AccessService) resolve(userID, fileName string) (string, error) {
	candidate := UserImagesDir(userID) + fileName

	image, err := s.imageRepo.ByPath(userID, candidate)
	if err == nil {
		return image.StoragePath, nil
	}
	if !errors.Is(err, repository.ErrImageNotFound) {
		return "", fmt.Errorf("failed to get image: %w", err)
	}

	exists, err := s.storage.Exists(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check image: %w", err)
	}
	if !exists {
		return "", ErrNotFound
	}

	return candidate, nil
}
