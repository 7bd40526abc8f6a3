package client

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/subsync/pkg/async"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/view"
)

// Start registers the client's only identity listener and returns the
// function that removes it. The listener fires synchronously for the
// current identity before Start returns.
func (c *Client) Start(ctx context.Context) (stop func()) {
	return c.source.Subscribe(func(id *identity.Identity) {
		c.HandleIdentity(ctx, id)
	})
}

// HandleIdentity applies one identity transition. The shell switch is
// rendered before it returns; the token fetch and subscription lookup run in
// the background and resolve the returned future. The background work is
// not cancelled with ctx, so the panel never stays in its loading state.
func (c *Client) HandleIdentity(ctx context.Context, id *identity.Identity) *async.Future[Outcome] {
	return c.transition(ctx, func(*identity.Identity) *identity.Identity { return id })
}

// Reload behaves like a fresh page load: a finished checkout handoff is
// cleared and the current identity goes through a new transition, so its
// subscription is looked up again.
func (c *Client) Reload(ctx context.Context) *async.Future[Outcome] {
	if c.purchase.Is(purchaseRedirecting) {
		c.mutate(ctx, func(s *view.State) { s.Processing = false })
		c.purchase.Reset()
	}
	return c.transition(ctx, func(cur *identity.Identity) *identity.Identity { return cur })
}

// transition picks the next identity under the state lock, so a listener
// delivery cannot slip in between reading and applying it.
func (c *Client) transition(ctx context.Context, next func(current *identity.Identity) *identity.Identity) *async.Future[Outcome] {
	c.mu.Lock()
	id := next(c.current)
	c.generation++
	gen := c.generation
	c.current = id

	if id == nil {
		c.state = view.State{Processing: c.state.Processing, SigningIn: c.state.SigningIn}
		c.renderLocked(ctx)
		c.mu.Unlock()

		c.metrics.transition("signed_out")
		c.logger.DebugContext(ctx, "signed out", logger.Generation(gen))
		return async.Resolved(OutcomeAnonymous, nil)
	}

	c.state = view.State{
		SignedIn:    true,
		DisplayName: id.DisplayName,
		Loading:     true,
		Processing:  c.state.Processing,
		SigningIn:   c.state.SigningIn,
	}
	c.renderLocked(ctx)
	c.inflight.Add(1)
	c.mu.Unlock()

	c.metrics.transition("signed_in")
	c.logger.DebugContext(ctx, "signed in", logger.IdentityID(id.ID), logger.Generation(gen))

	return async.Go(context.WithoutCancel(ctx), func(ctx context.Context) (Outcome, error) {
		defer c.inflight.Done()
		return c.refresh(ctx, gen, id), nil
	})
}

// refresh fetches a token for id and runs the lookup for generation gen.
func (c *Client) refresh(ctx context.Context, gen uint64, id *identity.Identity) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "subscription refresh panicked",
				logger.Generation(gen), logger.Error(fmt.Errorf("%v", r)))
			outcome = c.settle(ctx, gen, nil, OutcomeFailed)
		}
	}()

	token, err := id.Token(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "token unavailable, skipping subscription lookup",
			logger.IdentityID(id.ID),
			logger.Generation(gen),
			logger.Error(err),
		)
		return c.settle(ctx, gen, nil, OutcomeTokenFailed)
	}
	return c.sync(ctx, gen, token)
}
