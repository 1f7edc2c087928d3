package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/templui/thumbnailer/internal/imaging"
	"github.com/templui/thumbnailer/internal/metrics"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/storage"
	"github.com/templui/thumbnailer/internal/tier"
	"github.com/templui/thumbnailer/internal/validation"
)

const (
	FieldOriginalImage = "original_image"
	FieldLiveTime      = "live_time"

	UploadSuccessMessage = "Image uploaded successfully"

	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// UploadFile is the original_image part of an upload, read into memory.
type UploadFile struct {
	Name string
	Data []byte
}

type UploadInput struct {
	// File is nil when no file part named original_image was sent
	File *UploadFile
	// FieldSent is set when original_image arrived as a plain form value
	FieldSent    bool
	LiveTime     string
	LiveTimeSent bool
}

type UploadResult struct {
	Image      *model.Image
	Policy     tier.Policy
	Thumbnails []Thumbnail
	Expiring   *model.ExpiringImage
	// Payload is the response body: one entry per artifact plus "success"
	Payload map[string]string
}

type ImageServiceOptions struct {
	Links         Links
	MaxUploadSize int64
	// MaxPixels caps width*height of a source; zero means imaging.DefaultMaxPixels
	MaxPixels int64

	RollbackPartialUploads bool
}

// ImageService runs the upload pipeline and lists a user's originals.
type ImageService struct {
	imageRepo   repository.ImageRepository
	storage     storage.Storage
	thumbnails  *ThumbnailService
	expiring    *ExpiringService
	metrics     metrics.Metrics
	links       Links
	constraints validation.FileConstraints
	maxPixels   int64
	rollback    bool
	now         func() time.Time
}

func NewImageService(
	imageRepo repository.ImageRepository,
	storage storage.Storage,
	thumbnails *ThumbnailService,
	expiring *ExpiringService,
	m metrics.Metrics,
	opts ImageServiceOptions,
) *ImageService {
	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = imaging.DefaultMaxPixels
	}

	return &ImageService{
		imageRepo:   imageRepo,
		storage:     storage,
		thumbnails:  thumbnails,
		expiring:    expiring,
		metrics:     m,
		links:       opts.Links,
		constraints: validation.UploadConstraints(opts.MaxUploadSize),
		maxPixels:   maxPixels,
		rollback:    opts.RollbackPartialUploads,
		now:         time.Now,
	}
}

func (s *ImageService) Links() Links {
	return s.links
}

// ReadFile validates a multipart file header and reads the part.
func (s *ImageService) ReadFile(header *multipart.FileHeader) (*UploadFile, error) {
	err := validation.ValidateFile(header, s.constraints)
	if err != nil {
		return nil, newValidationError(FieldOriginalImage, err.Error())
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return &UploadFile{Name: header.Filename, Data: data}, nil
}

// Upload stores an original for user and generates the artifacts of the
// user's tier, in this order:
//
//	received -> persisted -> format checked -> policy resolved -> artifacts generated
//
// Failing the format check deletes the persisted image again. A failure while
// generating artifacts leaves what was already written unless partial uploads
// are rolled back.
func (s *ImageService) Upload(user *model.User, in UploadInput) (*UploadResult, error) {
	tierName := tier.KindOf(user.Tier).String()

	// Received
	src, err := s.receive(in)
	if err != nil {
		s.metrics.IncUpload(tierName, metrics.OutcomeInvalid)
		return nil, err
	}

	// Persisted
	ext := validation.Extension(in.File.Name)
	if !imaging.MatchesExtension(src.Format(), ext) {
		ext = imaging.Extension(src.Format())
	}
	image, err := s.persist(user.ID, ext, in.File.Data, src)
	if err != nil {
		s.metrics.IncUpload(tierName, metrics.OutcomeFailed)
		return nil, err
	}

	// Format checked
	if !src.Encodable() {
		s.discard(image, nil)
		s.metrics.IncUpload(tierName, metrics.OutcomeUnsupported)
		slog.Info("upload rejected", "reason", "unsupported format", "format", src.Format(), "user_id", user.ID)
		return nil, ErrUnsupportedFormat
	}

	// Policy resolved
	policy := tier.Resolve(user.Tier)
	for _, height := range policy.Sizes {
		if !src.CanResize(height) {
			s.discard(image, nil)
			s.metrics.IncUpload(tierName, metrics.OutcomeInvalid)
			slog.Info("upload rejected", "reason", "thumbnail too large", "width", src.Width(), "height", src.Height(), "thumbnail", height, "user_id", user.ID)
			return nil, newValidationError(FieldOriginalImage, fmt.Sprintf("The image proportions do not allow a %dpx thumbnail.", height))
		}
	}

	// Artifacts generated
	result := &UploadResult{Image: image, Policy: policy}

	result.Thumbnails, err = s.thumbnails.GenerateAll(src, image.StoragePath, policy.Sizes)
	if err != nil {
		s.abandon(image, result)
		s.metrics.IncUpload(tierName, metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to generate thumbnails: %w", err)
	}

	if policy.ExposeExpiring {
		liveTime, err := ParseLiveTime(in.LiveTime, in.LiveTimeSent)
		if err != nil {
			s.abandon(image, result)
			s.metrics.IncUpload(tierName, metrics.OutcomeInvalid)
			return nil, err
		}

		result.Expiring, err = s.expiring.Create(user.ID, ext, in.File.Data, liveTime)
		if err != nil {
			s.abandon(image, result)
			s.metrics.IncUpload(tierName, metrics.OutcomeFailed)
			return nil, err
		}
	}

	result.Payload = s.payload(result)
	s.metrics.IncUpload(tierName, metrics.OutcomeCreated)
	slog.Info("image uploaded",
		"user_id", user.ID,
		"image_id", image.ID,
		"tier", tierName,
		"thumbnails", len(result.Thumbnails),
		"expiring", result.Expiring != nil,
	)
	return result, nil
}

// List returns the user's originals, oldest first.
func (s *ImageService) List(userID string) ([]*model.Image, error) {
	return s.imageRepo.ByUser(userID)
}

// Count returns how many originals the user owns.
func (s *ImageService) Count(userID string) (int, error) {
	return s.imageRepo.CountByUser(userID)
}

// receive checks the request carries a decodable image of acceptable size.
// The header is read first so that oversized pixel data is never decoded.
func (s *ImageService) receive(in UploadInput) (*imaging.Image, error) {
	if in.File == nil {
		if in.FieldSent {
			return nil, newValidationError(FieldOriginalImage, "The submitted data was not a file. Check the encoding type on the form.")
		}
		return nil, newValidationError(FieldOriginalImage, "No file was submitted.")
	}

	if len(in.File.Data) == 0 {
		return nil, newValidationError(FieldOriginalImage, "The submitted file is empty.")
	}

	cfg, err := imaging.CheckPixels(in.File.Data, s.maxPixels)
	if errors.Is(err, imaging.ErrTooLarge) {
		return nil, newValidationError(FieldOriginalImage, fmt.Sprintf("Image size (%d pixels) exceeds limit of %d pixels.", cfg.Pixels(), s.maxPixels))
	}
	if err != nil {
		return nil, newValidationError(FieldOriginalImage, msgInvalidImage)
	}

	src, err := imaging.Decode(in.File.Data)
	if err != nil {
		return nil, newValidationError(FieldOriginalImage, msgInvalidImage)
	}

	return src, nil
}

// persist allocates the image id, derives the path from it, writes the bytes
// and then records the image.
func (s *ImageService) persist(userID, ext string, data []byte, src *imaging.Image) (*model.Image, error) {
	id := uuid.New().String()
	image := &model.Image{
		ID:          id,
		UserID:      userID,
		StoragePath: OriginalPath(userID, id, ext),
		Format:      src.Format(),
		Width:       src.Width(),
		Height:      src.Height(),
		CreatedAt:   s.now().UTC(),
	}

	err := s.storage.Save(image.StoragePath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	err = s.imageRepo.Create(image)
	if err != nil {
		delErr := s.storage.Delete(image.StoragePath)
		if delErr != nil {
			slog.Error("failed to delete image from storage during cleanup", "error", delErr, "path", image.StoragePath)
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	return image, nil
}

// discard deletes an image record, its bytes and any extra paths.
func (s *ImageService) discard(image *model.Image, paths []string) {
	err := s.imageRepo.Delete(image.ID)
	if err != nil && !errors.Is(err, repository.ErrImageNotFound) {
		slog.Error("failed to delete image record", "error", err, "image_id", image.ID)
	}

	for _, p := range append(paths, image.StoragePath) {
		delErr := s.storage.Delete(p)
		if delErr != nil {
			slog.Error("failed to delete file from storage", "error", delErr, "path", p)
		}
	}
}

// abandon handles a failure after the image passed its format check.
func (s *ImageService) abandon(image *model.Image, result *UploadResult) {
	var written []string
	for _, t := range result.Thumbnails {
		written = append(written, t.Path)
	}

	if !s.rollback {
		slog.Warn("upload failed after artifacts were written",
			"image_id", image.ID,
			"written", written,
		)
		return
	}

	s.discard(image, written)
	slog.Info("rolled back partial upload", "image_id", image.ID, "removed", len(written)+1)
}

func (s *ImageService) payload(result *UploadResult) map[string]string {
	data := make(map[string]string, len(result.Thumbnails)+3)
	for _, t := range result.Thumbnails {
		data[strconv.Itoa(t.Height)+"px_thumbnail"] = s.links.Artifact(t.Path)
	}
	if result.Policy.ExposeOriginal {
		data["original_image"] = s.links.Artifact(result.Image.StoragePath)
	}
	if result.Expiring != nil {
		data[strconv.Itoa(result.Expiring.LiveTime)+"s_expiring_link"] = s.links.Expiring(result.Expiring.StoragePath)
	}
	data["success"] = UploadSuccessMessage
	return data
}
