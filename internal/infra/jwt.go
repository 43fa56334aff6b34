// README: Local HS256 session tokens issued at login and verified by the auth middleware.
package infra

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const jwtIssuer = "carrental-api"

// AccountIDClaim carries the numeric customer id. Firebase reserves "user_id" for its
// own string uid.
const AccountIDClaim = "account_id"

// SessionClaims is the payload of a login token.
type SessionClaims struct {
	UserID int64  `json:"account_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies session tokens with a shared secret. It implements
// TokenVerifier.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user and its expiry.
func (j *JWTIssuer) Issue(userID int64, email string) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (j *JWTIssuer) VerifyIDToken(_ context.Context, raw string) (*Token, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return j.secret, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 && claims.Subject != "" {
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return nil, ErrInvalidToken
		}
		claims.UserID = id
	}
	return &Token{
		UID: strconv.FormatInt(claims.UserID, 10),
		Claims: map[string]interface{}{
			AccountIDClaim: claims.UserID,
			"email":        claims.Email,
		},
	}, nil
}
