package model

import (
	"time"
)

// Image is an uploaded original owned by a single user.
type Image struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	StoragePath string    `db:"storage_path"` // {user_id}/images/{id}{ext}
	Format      string    `db:"format"`       // Decoded format: jpeg, png
	Width       int       `db:"width"`
	Height      int       `db:"height"`
	CreatedAt   time.Time `db:"created_at"`
}
