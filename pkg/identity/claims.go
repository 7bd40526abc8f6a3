package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of OpenID Connect id token claims the client reads.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// DisplayName picks the best human label available.
func (c *Claims) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Email != "":
		return c.Email
	default:
		return c.Subject
	}
}

// ParseClaims decodes an id token without verifying its signature. The
// backend verifies tokens; the client only needs the labels.
func ParseClaims(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Join(ErrInvalidIDToken, err)
	}
	if claims.Subject == "" {
		return nil, errors.Join(ErrInvalidIDToken, errors.New("missing sub claim"))
	}
	return claims, nil
}

// FromIDToken builds an identity around a fixed id token, e.g. one passed
// on the command line. Once the token's exp has passed, Token fails with
// ErrTokenExpired: a static token cannot be refreshed.
func FromIDToken(raw string) (*Identity, error) {
	claims, err := ParseClaims(raw)
	if err != nil {
		return nil, err
	}
	return New(claims.Subject, claims.DisplayName(), func(context.Context) (string, error) {
		if exp := claims.ExpiresAt; exp != nil && time.Now().After(exp.Time) {
			return "", ErrTokenExpired
		}
		return raw, nil
	}), nil
}
