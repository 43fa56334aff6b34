package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("secret", 5*time.Minute)

	raw, exp, err := issuer.Issue(42, "mario@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	tok, err := issuer.VerifyIDToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "42", tok.UID)
	assert.Equal(t, int64(42), tok.Claims[AccountIDClaim])
	assert.Equal(t, "mario@example.com", tok.Claims["email"])
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer("secret", 300*time.Second)
	issued := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	raw, _, err := issuer.Issue(7, "")
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(301 * time.Second) }
	_, err = issuer.VerifyIDToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	raw, _, err := NewJWTIssuer("one", time.Minute).Issue(7, "")
	require.NoError(t, err)

	_, err = NewJWTIssuer("two", time.Minute).VerifyIDToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_RejectsForeignIssuerAndGarbage(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Minute)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	raw, err := foreign.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.VerifyIDToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyIDToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type fixedVerifier struct {
	tok *Token
	err error
}

func (f fixedVerifier) VerifyIDToken(context.Context, string) (*Token, error) {
	return f.tok, f.err
}

func TestChainVerifier(t *testing.T) {
	fail := fixedVerifier{err: errors.New("nope")}
	ok := fixedVerifier{tok: &Token{UID: "u1"}}

	tok, err := ChainVerifier{fail, ok}.VerifyIDToken(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UID)

	_, err = ChainVerifier{fail}.VerifyIDToken(context.Background(), "x")
	assert.EqualError(t, err, "nope")

	_, err = ChainVerifier{}.VerifyIDToken(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", false)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
	assert.True(t, strings.Contains(out, `"service":"carrental-api"`))
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "loud", false)
	log.Debug().Msg("debug")
	log.Info().Msg("info")

	assert.NotContains(t, buf.String(), `"message":"debug"`)
	assert.Contains(t, buf.String(), `"message":"info"`)
}
