package statemachine

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTransition is returned when the same from/event/to triple is registered twice.
	ErrDuplicateTransition = errors.New("statemachine: duplicate transition")
	// ErrActionFailed wraps an error returned by a transition action.
	ErrActionFailed = errors.New("statemachine: transition action failed")
)

// ErrNoTransitionAvailable indicates that no transition is defined for the
// current state and event.
type ErrNoTransitionAvailable struct {
	State string
	Event string
}

func (e *ErrNoTransitionAvailable) Error() string {
	return fmt.Sprintf("no transition available from state %q for event %q", e.State, e.Event)
}

// ErrTransitionRejected indicates that guards vetoed every candidate transition.
type ErrTransitionRejected struct {
	State string
	Event string
}

func (e *ErrTransitionRejected) Error() string {
	return fmt.Sprintf("transition from state %q for event %q was rejected by guards", e.State, e.Event)
}

func IsNoTransitionAvailableError(err error) bool {
	var e *ErrNoTransitionAvailable
	return errors.As(err, &e)
}

func IsTransitionRejectedError(err error) bool {
	var e *ErrTransitionRejected
	return errors.As(err, &e)
}
