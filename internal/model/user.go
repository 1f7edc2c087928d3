package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash *string   `db:"password_hash"` // Nullable for accounts created from the CLI without a password
	TierID       *string   `db:"tier_id"`
	CreatedAt    time.Time `db:"created_at"`

	// Loaded separately (not a column)
	Tier *Tier `db:"-"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// TierName returns the name of the user's tier, or "" when no tier is assigned.
func (u *User) TierName() string {
	if u.Tier == nil {
		return ""
	}
	return u.Tier.Name
}
