package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/thumbnailer/internal/imaging"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/storage"
)

var (
	ErrTierExists       = errors.New("tier already exists")
	ErrTierHeightNeeded = fmt.Errorf("thumbnail height must be between 1 and %d", imaging.MaxDimension)
)

// UserService manages accounts and the tiers they are assigned to.
type UserService struct {
	userRepository     repository.UserRepository
	tierRepository     repository.TierRepository
	expiringRepository repository.ExpiringImageRepository
	storage            storage.Storage
}

func NewUserService(
	userRepository repository.UserRepository,
	tierRepository repository.TierRepository,
	expiringRepository repository.ExpiringImageRepository,
	storage storage.Storage,
) *UserService {
	return &UserService{
		userRepository:     userRepository,
		tierRepository:     tierRepository,
		expiringRepository: expiringRepository,
		storage:            storage,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.userRepository.ByID(id)
	if err != nil {
		return nil, err
	}
	return user, loadTier(s.tierRepository, user)
}

func (s *UserService) ByUsername(username string) (*model.User, error) {
	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		return nil, err
	}
	return user, loadTier(s.tierRepository, user)
}

// ChangeTier moves a user to the named tier.
func (s *UserService) ChangeTier(userID, tierName string) (*model.User, error) {
	tier, err := s.tierRepository.ByName(tierName)
	if err != nil {
		return nil, err
	}

	err = s.userRepository.UpdateTier(userID, tier.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update tier: %w", err)
	}

	slog.Info("user tier changed", "user_id", userID, "tier", tier.Name)
	return s.ByID(userID)
}

func (s *UserService) Tiers() ([]*model.Tier, error) {
	return s.tierRepository.All()
}

// CreateTier adds a custom tier. Custom tiers get the generic policy.
func (s *UserService) CreateTier(name string, thumbnailHeight int, original, expiring bool) (*model.Tier, error) {
	if name == "" {
		return nil, newValidationError("name", "tier name is required")
	}
	if thumbnailHeight <= 0 || thumbnailHeight > imaging.MaxDimension {
		return nil, ErrTierHeightNeeded
	}

	tier := &model.Tier{
		ID:                         uuid.New().String(),
		Name:                       name,
		ThumbnailHeight:            &thumbnailHeight,
		PresenceOfOriginalFileLink: original,
		AbilityToFetchExpiringLink: expiring,
		CreatedAt:                  time.Now().UTC(),
	}

	err := s.tierRepository.Create(tier)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTier) {
			return nil, ErrTierExists
		}
		return nil, fmt.Errorf("failed to create tier: %w", err)
	}

	slog.Info("tier created", "tier", name, "thumbnail_height", thumbnailHeight)
	return tier, nil
}

// DeleteAccount removes every file the user owns and then the user.
// Image rows and tokens go with the user through ON DELETE CASCADE.
func (s *UserService) DeleteAccount(userID string) error {
	paths, err := s.storage.List(UserImagesDir(userID))
	if err != nil {
		return fmt.Errorf("failed to list user files: %w", err)
	}

	expiring, err := s.expiringRepository.ByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to list expiring images: %w", err)
	}
	for _, e := range expiring {
		paths = append(paths, e.StoragePath)
	}

	for _, p := range paths {
		err = s.storage.Delete(p)
		if err != nil {
			// Orphaned files are better than a failed deletion
			slog.Warn("failed to delete file from storage", "user_id", userID, "path", p, "error", err)
		}
	}

	err = s.userRepository.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("account deleted", "user_id", userID, "files", len(paths))
	return nil
}

// loadTier attaches the user's tier. A user without a tier keeps a nil Tier.
func loadTier(tiers repository.TierRepository, user *model.User) error {
	if user.TierID == nil {
		return nil
	}

	tier, err := tiers.ByID(*user.TierID)
	if err != nil {
		if errors.Is(err, repository.ErrTierNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get tier: %w", err)
	}

	user.Tier = tier
	return nil
}
