// Package gateway is the HTTP client for the subscription backend.
//
// It speaks three endpoints:
//
//	GET  /me/subscription         Authorization: Bearer <token>
//	POST /create-checkout-session {"id_token": "..."}  -> {"url": "..."}
//	POST /verify-token/           {"id_token": "..."}  (response ignored)
//
// Every request carries an X-Request-ID taken from the context (see
// pkg/requestid) or freshly generated. Failures are classified with the
// sentinel errors in errors.go so callers can decide whether to surface or
// swallow them.
package gateway
