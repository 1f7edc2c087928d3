package model

import (
	"time"
)

const (
	MinLiveTime = 300
	MaxLiveTime = 3000
)

// ExpiringImage is a time-boxed copy of an original, readable by anyone holding its link.
type ExpiringImage struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	StoragePath string    `db:"storage_path"` // expiring-images/{id}{ext}
	LiveTime    int       `db:"live_time"`    // Seconds
	CreatedAt   time.Time `db:"created_at"`
}

// IsExpired reports whether the image is past its live window at now.
// Whole seconds are compared and the boundary itself is still live.
func (e *ExpiringImage) IsExpired(now time.Time) bool {
	return now.Unix()-e.CreatedAt.Unix() > int64(e.LiveTime)
}

// ExpiresAt returns the last instant at which the image is still live.
func (e *ExpiringImage) ExpiresAt() time.Time {
	return e.CreatedAt.Add(time.Duration(e.LiveTime) * time.Second)
}
