package devbackend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/subsync/pkg/identity"
)

// Verifier checks an id token. *identity.DevIssuer implements it.
type Verifier interface {
	Verify(raw string) (*identity.Claims, error)
}

var (
	ErrMissingAuthorization = errors.New("devbackend: authorization header missing")
	ErrInvalidAuthorization = errors.New("devbackend: invalid authorization header")
	ErrStore                = errors.New("devbackend: store operation failed")
)

type claimsKey struct{}

// ClaimsFromContext returns the claims stored by RequireBearer.
func ClaimsFromContext(ctx context.Context) (*identity.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*identity.Claims)
	return c, ok
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrMissingAuthorization
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidAuthorization
	}
	return strings.TrimSpace(token), nil
}

// RequireBearer rejects requests without a valid bearer token with 401 and
// stores the verified claims in the request context.
func RequireBearer(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			switch {
			case errors.Is(err, ErrMissingAuthorization):
				writeJSON(w, r, http.StatusUnauthorized, detail("Authorization header missing"))
				return
			case err != nil:
				writeJSON(w, r, http.StatusUnauthorized, detail("Invalid Authorization header"))
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				writeJSON(w, r, http.StatusUnauthorized, detail("Invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}
