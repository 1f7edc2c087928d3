package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/thumbnailer/internal/model"
)

var (
	ErrTierNotFound  = errors.New("tier not found")
	ErrDuplicateTier = errors.New("tier already exists")
)

// TierRepository has no update path: tiers are shared by many users and
// request handling only ever reads them.
type TierRepository interface {
	Create(tier *model.Tier) error
	ByID(id string) (*model.Tier, error)
	ByName(name string) (*model.Tier, error)
	All() ([]*model.Tier, error)
}

type tierRepository struct {
	db *sqlx.DB
}

func NewTierRepository(db *sqlx.DB) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) Create(tier *model.Tier) error {
	query := `INSERT INTO tiers (id, name, thumbnail_height, presence_of_original_file_link, ability_to_fetch_expiring_link, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		tier.ID,
		tier.Name,
		tier.ThumbnailHeight,
		tier.PresenceOfOriginalFileLink,
		tier.AbilityToFetchExpiringLink,
		tier.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateTier
	}
	return err
}

func (r *tierRepository) ByID(id string) (*model.Tier, error) {
	tier := &model.Tier{}
	query := `SELECT * FROM tiers WHERE id = $1`

	err := r.db.Get(tier, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrTierNotFound
	}

	return tier, err
}

func (r *tierRepository) ByName(name string) (*model.Tier, error) {
	tier := &model.Tier{}
	query := `SELECT * FROM tiers WHERE name = $1`

	err := r.db.Get(tier, query, name)
	if err == sql.ErrNoRows {
		return nil, ErrTierNotFound
	}

	return tier, err
}

func (r *tierRepository) All() ([]*model.Tier, error) {
	var tiers []*model.Tier
	query := `SELECT * FROM tiers ORDER BY name`

	err := r.db.Select(&tiers, query)
	if err != nil {
		return nil, err
	}

	return tiers, nil
}
