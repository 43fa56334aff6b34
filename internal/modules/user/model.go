// README: Customer accounts used for login and rental ownership.
package user

import (
	"errors"
	"time"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("user not found")
	ErrUnknownEmail       = errors.New("invalid e-mail: this email is not registered")
	ErrInvalidCredentials = errors.New("wrong password")
	ErrLoginDisabled      = errors.New("password login is not enabled")
)

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Session is what a successful login returns to the client.
type Session struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
