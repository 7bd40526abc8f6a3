package client

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/view"
)

// SyncSubscription looks up the subscription for token and renders the
// result into the panel of the current identity. It always leaves the panel
// showing either the subscription or the empty state; failures are logged,
// never returned. Without a signed-in identity nothing is fetched.
func (c *Client) SyncSubscription(ctx context.Context, token string) Outcome {
	c.mu.Lock()
	gen, signedIn := c.generation, c.current != nil
	c.mu.Unlock()

	if !signedIn {
		return OutcomeAnonymous
	}
	return c.sync(ctx, gen, token)
}

func (c *Client) sync(ctx context.Context, gen uint64, token string) (outcome Outcome) {
	if !c.mutateIf(ctx, gen, func(s *view.State) {
		s.Loading = true
		s.Subscription = nil
	}) {
		c.metrics.sync(OutcomeStale)
		return OutcomeStale
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "subscription lookup panicked",
				logger.Generation(gen), logger.Error(fmt.Errorf("%v", r)))
			outcome = c.settle(ctx, gen, nil, OutcomeFailed)
		}
	}()

	sub, err := c.gateway.GetSubscription(ctx, token)
	if err != nil {
		c.logger.WarnContext(ctx, "subscription lookup failed",
			logger.Generation(gen), logger.Error(err))
		return c.settle(ctx, gen, nil, OutcomeFailed)
	}
	if sub == nil {
		return c.settle(ctx, gen, nil, OutcomeEmpty)
	}
	return c.settle(ctx, gen, sub, OutcomeSubscribed)
}

// settle clears loading and shows sub, unless gen is stale.
func (c *Client) settle(ctx context.Context, gen uint64, sub *gateway.Subscription, o Outcome) Outcome {
	applied := c.mutateIf(ctx, gen, func(s *view.State) {
		s.Loading = false
		s.Subscription = nil
		if sub != nil {
			s.Subscription = &view.Subscription{
				Plan:      sub.Plan,
				Status:    sub.Status,
				PeriodEnd: sub.PeriodEnd(),
			}
		}
	})
	if !applied {
		c.logger.DebugContext(ctx, "discarding stale subscription result",
			logger.Generation(gen), logger.Outcome(o.String()))
		o = OutcomeStale
	}
	c.metrics.sync(o)
	return o
}
