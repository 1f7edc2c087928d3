package model

import (
	"time"
)

// Built-in tier names. Any other name is a generic tier configured by its columns.
const (
	TierBasic      = "Basic"
	TierPremium    = "Premium"
	TierEnterprise = "Enterprise"
)

type Tier struct {
	ID                         string    `db:"id"`
	Name                       string    `db:"name"`
	ThumbnailHeight            *int      `db:"thumbnail_height"` // Null for built-in tiers
	PresenceOfOriginalFileLink bool      `db:"presence_of_original_file_link"`
	AbilityToFetchExpiringLink bool      `db:"ability_to_fetch_expiring_link"`
	CreatedAt                  time.Time `db:"created_at"`
}

func (t *Tier) IsBuiltin() bool {
	switch t.Name {
	case TierBasic, TierPremium, TierEnterprise:
		return true
	}
	return false
}
