// Package statemachine implements a small typed finite-state machine.
//
// States and events are any comparable types, usually string-based enums:
//
//	type state string
//	type event string
//
//	m := statemachine.MustNew[state, event]("idle",
//		statemachine.WithTransition[state, event]("idle", "processing", "start"),
//		statemachine.WithTransition[state, event]("processing", "idle", "release"),
//	)
//
//	if _, err := m.Fire(ctx, "start"); err != nil {
//		// already processing
//	}
//
// Fire looks up the transitions registered for the current state and event,
// picks the first whose guards all pass, runs its actions and moves to the
// target state. The check and the move happen under one lock, so two
// goroutines firing the same event see exactly one success. This is what
// makes the machine usable as a re-entrancy guard.
//
// Errors are typed: IsNoTransitionAvailableError reports an undefined
// state/event pair, IsTransitionRejectedError reports a guard veto.
package statemachine
