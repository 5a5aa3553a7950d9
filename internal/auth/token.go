// Package auth issues and verifies API tokens and authenticates requests.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Token is a signed JWT. Its String form is the raw token; logs redact it.
type Token string

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret   []byte
	expireIn time.Duration
	now      func() time.Time
}

// TokensOption configures Tokens.
type TokensOption func(*Tokens)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokensOption {
	return func(t *Tokens) { t.now = now }
}

// NewTokens creates a signer whose tokens live for expireInHours.
func NewTokens(secret string, expireInHours int, opts ...TokensOption) (*Tokens, error) {
	if secret == "" {
		return nil, goerr.New("jwt secret is empty")
	}
	if expireInHours <= 0 {
		return nil, goerr.New("jwt expiry must be positive", goerr.V("hours", expireInHours))
	}
	t := &Tokens{
		secret:   []byte(secret),
		expireIn: time.Duration(expireInHours) * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a token for the user id.
func (t *Tokens) Issue(userID uuid.UUID) (Token, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.expireIn)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", goerr.Wrap(err, "sign token")
	}
	return Token(signed), nil
}

// Verify checks signature, algorithm and expiry, and returns the claims.
func (t *Tokens) Verify(raw string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "verify token")
	}
	return &claims, nil
}
