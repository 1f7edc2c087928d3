package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/thumbnailer/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

type TokenRepository interface {
	Create(token *model.Token) error
	ByKey(key string) (*model.Token, error)
	ByUserID(userID string) (*model.Token, error)
	Touch(id string, at time.Time) error
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *model.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tokens (id, user_id, token, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(query,
		token.ID,
		token.UserID,
		token.Key,
		token.CreatedAt,
	)
	return err
}

func (r *tokenRepository) ByKey(key string) (*model.Token, error) {
	var t model.Token
	query := `SELECT * FROM tokens WHERE token = $1`

	err := r.db.Get(&t, query, key)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *tokenRepository) ByUserID(userID string) (*model.Token, error) {
	var t model.Token
	query := `SELECT * FROM tokens WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`

	err := r.db.Get(&t, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *tokenRepository) Touch(id string, at time.Time) error {
	query := `UPDATE tokens SET last_used_at = $1 WHERE id = $2`
	_, err := r.db.Exec(query, at, id)
	return err
}
