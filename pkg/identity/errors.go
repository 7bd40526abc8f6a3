package identity

import "errors"

var (
	// ErrToken is the root of every token capability failure: provider
	// outage, revoked or expired session.
	ErrToken = errors.New("identity: failed to obtain bearer token")

	ErrTokenExpired   = errors.New("identity: token expired")
	ErrEmptyToken     = errors.New("identity: provider returned an empty token")
	ErrNoCapability   = errors.New("identity: identity has no token capability")
	ErrInvalidIDToken = errors.New("identity: malformed id token")

	ErrInvalidCode = errors.New("identity: invalid authorization code")
	ErrNoIDToken   = errors.New("identity: provider response has no id_token")
	ErrNoIdentity  = errors.New("identity: sign-in produced no identity")
)
