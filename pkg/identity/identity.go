package identity

import (
	"context"
	"errors"
)

// TokenFunc produces a bearer token for the identity.
type TokenFunc func(ctx context.Context) (string, error)

// Identity is the signed-in user's client-side handle.
type Identity struct {
	ID          string
	DisplayName string

	token TokenFunc
}

// New builds an identity around a token capability.
func New(id, displayName string, token TokenFunc) *Identity {
	return &Identity{ID: id, DisplayName: displayName, token: token}
}

// Token asks the provider for a bearer token. Every failure wraps ErrToken.
func (i *Identity) Token(ctx context.Context) (string, error) {
	if i == nil || i.token == nil {
		return "", errors.Join(ErrToken, ErrNoCapability)
	}
	tok, err := i.token(ctx)
	if err != nil {
		return "", errors.Join(ErrToken, err)
	}
	if tok == "" {
		return "", errors.Join(ErrToken, ErrEmptyToken)
	}
	return tok, nil
}

// Listener receives identity transitions. A nil identity means signed out.
type Listener func(*Identity)

// Source is the subscribable identity state of the provider.
type Source interface {
	// Subscribe registers fn, calls it synchronously with the current
	// identity and then once per transition. The returned function removes
	// the listener and is safe to call more than once.
	Subscribe(fn Listener) (unsubscribe func())

	// Current returns the signed-in identity or nil.
	Current() *Identity

	// SignOut ends the session. Listeners are notified; the call itself
	// returns no state.
	SignOut(ctx context.Context) error
}
