package model

import (
	"time"
)

// Token is an API key issued to a user when the account is created.
// Requests authenticate with "Authorization: Token <key>".
type Token struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Key       string     `db:"token"`
	LastUsed  *time.Time `db:"last_used_at"`
	CreatedAt time.Time  `db:"created_at"`
}
