// Package devbackend is a stand-in for the subscription backend, for local
// runs and integration tests.
//
// It serves the three endpoints the client uses plus the checkout return
// pages. Tokens are HS256 id tokens minted by identity.DevIssuer. A checkout
// session URL points straight at /success, which activates the
// subscription, so the whole purchase loop can be exercised without a
// payment provider. Records live in memory unless a RedisStore is passed
// with WithStore.
package devbackend
