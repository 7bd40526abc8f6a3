package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBaseURL = errors.New("gateway: invalid backend base url")
	ErrMissingToken   = errors.New("gateway: bearer token is required")

	// ErrRequestFailed covers transport failures: DNS, refused connections,
	// timeouts, cancelled contexts.
	ErrRequestFailed = errors.New("gateway: request failed")
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("gateway: unexpected response status")
	// ErrMalformedBody is returned when the body does not match the contract.
	ErrMalformedBody = errors.New("gateway: malformed response body")
	// ErrNoCheckoutURL is returned when a checkout response carries no url.
	ErrNoCheckoutURL = errors.New("gateway: checkout response has no url")
	// ErrInvalidCheckoutURL is returned when the checkout url is not an
	// absolute http or https url.
	ErrInvalidCheckoutURL = errors.New("gateway: checkout url is not http or https")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: unexpected response status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// CheckoutError carries the backend's raw response when a checkout session
// could not be created, so it can be shown to the user verbatim.
type CheckoutError struct {
	Status int
	Body   string
	Err    error
}

func (e *CheckoutError) Error() string {
	if e.Body == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Body)
}

func (e *CheckoutError) Unwrap() error { return e.Err }
