package async

import "errors"

var (
	// ErrPanic wraps a value recovered from a panicking future function.
	ErrPanic = errors.New("async: function panicked")
)
