package subsync

import "errors"

var (
	ErrInvalidConfig = errors.New("subsync: invalid configuration")
	ErrInitialize    = errors.New("subsync: failed to initialize")

	ErrInvalidState = errors.New("subsync: oauth state mismatch")
	ErrMissingCode  = errors.New("subsync: authorization code is missing")
	ErrProvider     = errors.New("subsync: identity provider returned an error")
)
