package domain

import (
	"errors"
	"time"
)

var (
	// ErrUsernameTaken is returned when the username unique constraint rejects a write.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned when the email unique constraint rejects a write.
	ErrEmailTaken = errors.New("email already taken")
)

// Account is a registered user. PasswordHash never leaves the server.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
