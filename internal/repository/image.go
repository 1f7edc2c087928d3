package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/thumbnailer/internal/model"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrDuplicatePath = errors.New("storage path already in use")
)

type ImageRepository interface {
	Create(image *model.Image) error
	ByID(id string) (*model.Image, error)
	ByPath(userID, storagePath string) (*model.Image, error)
	ByUser(userID string) ([]*model.Image, error)
	CountByUser(userID string) (int, error)
	Delete(id string) error
}

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(image *model.Image) error {
	query := `INSERT INTO images (id, user_id, storage_path, format, width, height, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		image.ID,
		image.UserID,
		image.StoragePath,
		image.Format,
		image.Width,
		image.Height,
		image.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicatePath
	}
	return err
}

func (r *imageRepository) ByID(id string) (*model.Image, error) {
	image := &model.Image{}
	query := `SELECT * FROM images WHERE id = $1`

	err := r.db.Get(image, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrImageNotFound
	}

	return image, err
}

// ByPath matches the stored path exactly and only among the user's own images.
func (r *imageRepository) ByPath(userID, storagePath string) (*model.Image, error) {
	image := &model.Image{}
	query := `SELECT * FROM images WHERE user_id = $1 AND storage_path = $2`

	err := r.db.Get(image, query, userID, storagePath)
	if err == sql.ErrNoRows {
		return nil, ErrImageNotFound
	}

	return image, err
}

func (r *imageRepository) ByUser(userID string) ([]*model.Image, error) {
	var images []*model.Image
	query := `SELECT * FROM images WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.Select(&images, query, userID)
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *imageRepository) CountByUser(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM images WHERE user_id = $1`
	err := r.db.Get(&count, query, userID)
	return count, err
}

func (r *imageRepository) Delete(id string) error {
	query := `DELETE FROM images WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrImageNotFound)
}
