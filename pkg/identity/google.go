package identity

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleConfig configures Google sign-in.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
}

// Enabled reports whether client credentials are configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// GoogleProvider signs users in with Google and exposes their OpenID
// Connect id token as the bearer token.
type GoogleProvider struct {
	conf *oauth2.Config
}

// GoogleOption adjusts a GoogleProvider.
type GoogleOption func(*oauth2.Config)

// WithGoogleEndpoint overrides the OAuth endpoint, mostly for tests.
func WithGoogleEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(c *oauth2.Config) { c.Endpoint = ep }
}

// NewGoogleProvider creates the provider.
func NewGoogleProvider(cfg GoogleConfig, opts ...GoogleOption) *GoogleProvider {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     google.Endpoint,
	}
	for _, opt := range opts {
		opt(conf)
	}
	return &GoogleProvider{conf: conf}
}

// AuthURL returns the consent page URL for state.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// SignIn exchanges an authorization code for an identity.
func (p *GoogleProvider) SignIn(ctx context.Context, code string) (*Identity, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(ErrInvalidCode, err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, ErrNoIDToken
	}
	claims, err := ParseClaims(raw)
	if err != nil {
		return nil, err
	}

	src := &idTokenSource{
		ts:     p.conf.TokenSource(context.WithoutCancel(ctx), tok),
		latest: raw,
	}
	return New(claims.Subject, claims.DisplayName(), src.Token), nil
}

// idTokenSource refreshes through oauth2 and remembers the last id token,
// since refresh responses do not always repeat it.
type idTokenSource struct {
	ts oauth2.TokenSource

	mu     sync.Mutex
	latest string
}

func (s *idTokenSource) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := s.ts.Token()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		s.latest = raw
	}
	return s.latest, nil
}
