package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/thumbnailer/internal/model"
)

var (
	ErrExpiringImageNotFound = errors.New("expiring image not found")
)

type ExpiringImageRepository interface {
	Create(image *model.ExpiringImage) error
	ByPath(storagePath string) (*model.ExpiringImage, error)
	ByUser(userID string) ([]*model.ExpiringImage, error)
	CreatedBefore(cutoff time.Time) ([]*model.ExpiringImage, error)
	Delete(id string) error
}

type expiringImageRepository struct {
	db *sqlx.DB
}

func NewExpiringImageRepository(db *sqlx.DB) ExpiringImageRepository {
	return &expiringImageRepository{db: db}
}

func (r *expiringImageRepository) Create(image *model.ExpiringImage) error {
	query := `INSERT INTO expiring_images (id, user_id, storage_path, live_time, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query,
		image.ID,
		image.UserID,
		image.StoragePath,
		image.LiveTime,
		image.CreatedAt,
	)
	return err
}

func (r *expiringImageRepository) ByPath(storagePath string) (*model.ExpiringImage, error) {
	image := &model.ExpiringImage{}
	query := `SELECT * FROM expiring_images WHERE storage_path = $1`

	err := r.db.Get(image, query, storagePath)
	if err == sql.ErrNoRows {
		return nil, ErrExpiringImageNotFound
	}

	return image, err
}

func (r *expiringImageRepository) ByUser(userID string) ([]*model.ExpiringImage, error) {
	var images []*model.ExpiringImage
	query := `SELECT * FROM expiring_images WHERE user_id = $1 ORDER BY created_at`

	err := r.db.Select(&images, query, userID)
	if err != nil {
		return nil, err
	}

	return images, nil
}

// CreatedBefore lists candidates for reaping. Callers still decide liveness per row.
func (r *expiringImageRepository) CreatedBefore(cutoff time.Time) ([]*model.ExpiringImage, error) {
	var images []*model.ExpiringImage
	query := `SELECT * FROM expiring_images WHERE created_at < $1 ORDER BY created_at`

	err := r.db.Select(&images, query, cutoff)
	if err != nil {
		return nil, err
	}

	return images, nil
}

// Delete returns ErrExpiringImageNotFound when another request already removed the row.
func (r *expiringImageRepository) Delete(id string) error {
	query := `DELETE FROM expiring_images WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrExpiringImageNotFound)
}
