package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/view"
)

// SignInFunc runs the provider's sign-in. It must publish the identity to
// the client's source itself; the client only reacts to the source.
type SignInFunc func(ctx context.Context) (*identity.Identity, error)

// SignIn runs fn with the sign-in control in its busy state, then tells the
// backend about the new session. Provider and transport failures are shown
// to the user; a rejected verification is only logged. The control is
// restored on every path.
func (c *Client) SignIn(ctx context.Context, fn SignInFunc) error {
	c.mu.Lock()
	if c.state.SigningIn {
		c.mu.Unlock()
		return ErrSignInInProgress
	}
	c.state.SigningIn = true
	c.renderLocked(ctx)
	c.mu.Unlock()

	defer c.mutate(ctx, func(s *view.State) { s.SigningIn = false })

	if err := c.signIn(ctx, fn); err != nil {
		c.logger.WarnContext(ctx, "sign-in failed", logger.Error(err))
		c.alert(ctx, message(c.labels().LoginFailed, err.Error()))
		return fmt.Errorf("%w: %w", ErrSignIn, err)
	}
	return nil
}

func (c *Client) signIn(ctx context.Context, fn SignInFunc) error {
	id, err := fn(ctx)
	if err != nil {
		return err
	}
	if id == nil {
		return identity.ErrNoIdentity
	}

	token, err := id.Token(ctx)
	if err != nil {
		return err
	}

	err = c.gateway.VerifyToken(ctx, token)
	var se *gateway.StatusError
	if errors.As(err, &se) {
		c.logger.InfoContext(ctx, "backend rejected token verification",
			logger.IdentityID(id.ID), logger.StatusCode(se.Code))
		return nil
	}
	return err
}

// SignOut asks the source to end the session. The UI changes when the
// source notifies the listener, not here.
func (c *Client) SignOut(ctx context.Context) error {
	return c.source.SignOut(ctx)
}
