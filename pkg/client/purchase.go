package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/statemachine"
	"github.com/dmitrymomot/subsync/pkg/view"
)

type purchaseState string

const (
	purchaseIdle        purchaseState = "idle"
	purchaseProcessing  purchaseState = "processing"
	purchaseRedirecting purchaseState = "redirecting"
)

type purchaseEvent string

const (
	eventBegin    purchaseEvent = "begin"
	eventFail     purchaseEvent = "fail"
	eventRedirect purchaseEvent = "redirect"
)

// newPurchaseGuard builds idle -> processing -> idle | redirecting.
// redirecting has no way out: the page is about to be replaced.
func newPurchaseGuard() *statemachine.Machine[purchaseState, purchaseEvent] {
	return statemachine.MustNew(purchaseIdle,
		statemachine.WithTransition[purchaseState, purchaseEvent](purchaseIdle, purchaseProcessing, eventBegin),
		statemachine.WithTransition[purchaseState, purchaseEvent](purchaseProcessing, purchaseIdle, eventFail),
		statemachine.WithTransition[purchaseState, purchaseEvent](purchaseProcessing, purchaseRedirecting, eventRedirect),
	)
}

// Purchasing reports whether a purchase is running or has redirected.
func (c *Client) Purchasing() bool {
	return !c.purchase.Is(purchaseIdle)
}

// Purchase requests a checkout session and navigates to it.
//
// Without a signed-in identity the user is asked to sign in and
// ErrNotSignedIn is returned; the guard is not touched and nothing is sent.
// A user whose subscription is on screen gets ErrAlreadySubscribed, also
// without a backend call.
// While another attempt is outstanding, or after a successful redirect, it
// returns ErrPurchaseInProgress without contacting the backend. Every other
// failure is shown to the user, releases the guard and wraps ErrPurchase.
func (c *Client) Purchase(ctx context.Context) error {
	c.mu.Lock()
	id := c.current
	subscribed := c.state.Subscription != nil
	c.mu.Unlock()

	if id == nil {
		c.alert(ctx, c.labels().SignInFirst)
		c.metrics.purchase(purchaseNotSignedIn)
		return ErrNotSignedIn
	}
	if subscribed {
		c.metrics.purchase(purchaseSubscribed)
		return ErrAlreadySubscribed
	}

	if _, err := c.purchase.Fire(ctx, eventBegin); err != nil {
		c.metrics.purchase(purchaseInProgress)
		return errors.Join(ErrPurchaseInProgress, err)
	}
	c.mutate(ctx, func(s *view.State) { s.Processing = true })

	token, err := id.Token(ctx)
	if err != nil {
		return c.failPurchase(ctx, message(c.labels().PurchaseFailed, err.Error()), err)
	}

	session, err := c.gateway.CreateCheckoutSession(ctx, token)
	if err != nil {
		return c.failPurchase(ctx, c.checkoutMessage(err), err)
	}

	if _, err := c.purchase.Fire(ctx, eventRedirect); err != nil {
		return c.failPurchase(ctx, message(c.labels().PurchaseFailed, err.Error()), err)
	}
	c.logger.InfoContext(ctx, "redirecting to checkout", logger.IdentityID(id.ID))

	if err := c.navigator.Navigate(ctx, session.URL); err != nil {
		// The page did not unload, so the control must become usable again.
		return c.failPurchase(ctx, message(c.labels().PurchaseFailed, err.Error()), err)
	}
	c.metrics.purchase(purchaseRedirected)
	return nil
}

// failPurchase reports msg, restores the control and then releases the
// guard. Processing is cleared while the guard is still held, so it never
// clears the flag of a newer attempt.
func (c *Client) failPurchase(ctx context.Context, msg string, cause error) error {
	c.logger.WarnContext(ctx, "purchase failed", logger.Error(cause))
	c.alert(ctx, msg)

	c.mutate(ctx, func(s *view.State) { s.Processing = false })
	if c.purchase.Is(purchaseProcessing) {
		_, _ = c.purchase.Fire(ctx, eventFail)
	} else {
		c.purchase.Reset()
	}
	c.metrics.purchase(purchaseFailed)
	return fmt.Errorf("%w: %w", ErrPurchase, cause)
}

// checkoutMessage shows the backend's own answer when there is one, and the
// error otherwise.
func (c *Client) checkoutMessage(err error) string {
	var ce *gateway.CheckoutError
	if errors.As(err, &ce) && ce.Body != "" && !errors.Is(err, gateway.ErrMalformedBody) {
		return message(c.labels().CheckoutError, ce.Body)
	}
	return message(c.labels().PurchaseFailed, err.Error())
}
