// Package identity models the signed-in user as seen by the client.
//
// An Identity is an opaque handle: an id, a display label and a capability
// that produces a bearer token on demand. The client never mutates it; it
// only observes transitions through a Source.
//
// Source delivers the current identity (or nil) synchronously when a
// listener subscribes and then exactly once per transition. Hub is the
// in-memory implementation every provider in this package publishes into:
//
//	hub := identity.NewHub(nil)
//	stop := hub.Subscribe(func(id *identity.Identity) { ... })
//	defer stop()
//
//	id, err := google.SignIn(ctx, code)
//	if err == nil {
//		hub.SignIn(id)
//	}
//
// Token failures are reported wrapped in ErrToken.
package identity
