// README: User service: password login and profile lookup.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, time.Time, error)
}

type Service struct {
	store  Repository
	issuer TokenIssuer
	log    zerolog.Logger
}

func NewService(store Repository, issuer TokenIssuer, log zerolog.Logger) *Service {
	return &Service{store: store, issuer: issuer, log: log.With().Str("module", "user").Logger()}
}

// Login checks the password against the stored bcrypt hash and issues a session token.
// Without an issuer (Firebase-only deployments) it returns ErrLoginDisabled.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if s.issuer == nil {
		return nil, ErrLoginDisabled
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrBadRequest
	}
	u, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnknownEmail
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Info().Int64("user_id", u.ID).Msg("login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{ID: u.ID, Name: u.Name, Token: token, ExpiresAt: exp}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, ErrBadRequest
	}
	return s.store.GetByID(ctx, id)
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
