package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevIssuer mints HS256 id tokens for local development against the dev
// backend. It is not an identity provider and must not be used in
// production.
type DevIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDevIssuer creates an issuer. A non-positive ttl defaults to one hour.
func NewDevIssuer(secret []byte, ttl time.Duration) *DevIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &DevIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for the given subject.
func (d *DevIssuer) Issue(sub, name, email string) (string, error) {
	now := d.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d.ttl)),
		},
		Name:  name,
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
}

// Identity returns an identity whose token capability mints a fresh token
// on every call.
func (d *DevIssuer) Identity(sub, name, email string) *Identity {
	label := (&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}, Name: name, Email: email}).DisplayName()
	return New(sub, label, func(context.Context) (string, error) {
		return d.Issue(sub, name, email)
	})
}

// Verify checks signature and expiry of a token minted by Issue.
func (d *DevIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return d.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(d.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Join(ErrTokenExpired, err)
		}
		return nil, errors.Join(ErrInvalidIDToken, err)
	}
	return claims, nil
}
