// Package token issues and validates signed bearer tokens (HS256 JWT).
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/task-keeper/internal/errs"
	"github.com/and161185/task-keeper/internal/model"
)

// Service signs and validates access tokens. The signing key is process-wide
// configuration loaded once at startup; tokens carry only the subject username
// and timestamps, never secrets.
type Service struct {
	signKey []byte
	ttl     time.Duration
}

// New constructs a token service with the given signing key and token TTL.
func New(signKey []byte, ttl time.Duration) *Service {
	return &Service{signKey: signKey, ttl: ttl}
}

// Issue creates a signed HS256 JWT with the username as subject and an expiry
// a fixed TTL from now.
func (s *Service) Issue(username string) (model.AuthToken, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	if err != nil {
		return model.AuthToken{}, err
	}
	return model.AuthToken{AccessToken: signed, ExpiresAt: exp}, nil
}

// Validate checks signature and expiry and returns the embedded subject.
// Expiry failures map to errs.ErrExpiredToken; everything else (bad signature,
// wrong signing method, garbage input, missing subject) maps to errs.ErrInvalidToken.
func (s *Service) Validate(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errs.ErrExpiredToken
		}
		return "", errs.ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errs.ErrInvalidToken
	}
	return claims.Subject, nil
}
