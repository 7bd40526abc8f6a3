package client

import "errors"

var (
	// ErrNotSignedIn is returned by Purchase when no identity is present.
	ErrNotSignedIn = errors.New("client: not signed in")
	// ErrAlreadySubscribed is returned by Purchase while a subscription is
	// present. Nothing is sent.
	ErrAlreadySubscribed = errors.New("client: already subscribed")
	// ErrPurchase wraps every failed checkout attempt. The user was shown
	// the reason and can try again.
	ErrPurchase = errors.New("client: purchase failed")
	// ErrPurchaseInProgress is returned when Purchase is called while an
	// earlier attempt is still running or has already redirected.
	ErrPurchaseInProgress = errors.New("client: purchase already in progress")
	// ErrSignIn wraps provider and token failures during SignIn.
	ErrSignIn = errors.New("client: sign-in failed")
	// ErrSignInInProgress is returned when SignIn is called twice at once.
	ErrSignInInProgress = errors.New("client: sign-in already in progress")
)
