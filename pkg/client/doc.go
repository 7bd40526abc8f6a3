// Package client keeps a user interface consistent with an identity source
// and the subscription backend.
//
// A Client registers one listener with an identity.Source. Every identity
// transition switches the UI shell synchronously, then fetches a token and
// looks up the subscription in the background. Each transition bumps a
// generation counter; a lookup that resolves after a newer transition is
// discarded, so one user's subscription never flashes on another user's
// screen.
//
// Purchase is the user-initiated checkout handoff. It is guarded by a small
// state machine (idle, processing, redirecting) so that a second click while
// a checkout request is outstanding does not reach the backend.
//
// All UI output goes through the view.Renderer, view.Notifier and
// view.Navigator given to New. Every change re-derives the complete frame
// from the client state and renders it while holding the state lock, so
// frames arrive in the order the state changed.
//
// # Usage
//
//	c := client.New(hub, gw, term,
//		client.WithNotifier(term),
//		client.WithNavigator(term),
//		client.WithLogger(log),
//	)
//	stop := c.Start(ctx)
//	defer stop()
//
//	if err := c.Purchase(ctx); err != nil {
//		// the user has already been notified
//	}
package client
