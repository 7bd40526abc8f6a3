package statemachine

// Option configures a Machine at construction.
type Option[S, E comparable] func(*Machine[S, E]) error

// TransitionOption attaches guards or actions to one transition.
type TransitionOption[S, E comparable] func(*transition[S, E])

// WithTransition registers from --event--> to.
func WithTransition[S, E comparable](from, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		t := transition[S, E]{from: from, to: to, event: event}
		for _, opt := range opts {
			opt(&t)
		}
		return m.add(t)
	}
}

// WithGuard adds a guard. All guards must pass for the transition to fire.
func WithGuard[S, E comparable](g Guard[S, E]) TransitionOption[S, E] {
	return func(t *transition[S, E]) {
		if g != nil {
			t.guards = append(t.guards, g)
		}
	}
}

// WithAction adds an action run before the state changes. A failing action
// aborts the transition.
func WithAction[S, E comparable](a Action[S, E]) TransitionOption[S, E] {
	return func(t *transition[S, E]) {
		if a != nil {
			t.actions = append(t.actions, a)
		}
	}
}
