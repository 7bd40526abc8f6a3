package statemachine

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Guard decides at fire time whether a transition may proceed.
type Guard[S, E comparable] func(ctx context.Context, from S, event E) bool

// Action runs side effects for a transition. Returning an error keeps the
// machine in its current state.
type Action[S, E comparable] func(ctx context.Context, from, to S, event E) error

type transition[S, E comparable] struct {
	from    S
	to      S
	event   E
	guards  []Guard[S, E]
	actions []Action[S, E]
}

// Machine is a concurrency-safe in-memory state machine.
type Machine[S, E comparable] struct {
	mu          sync.Mutex
	initial     S
	current     S
	transitions map[S]map[E][]transition[S, E]
}

// New creates a machine in the initial state.
func New[S, E comparable](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]transition[S, E]),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on configuration errors.
func MustNew[S, E comparable](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Machine[S, E]) add(t transition[S, E]) error {
	byEvent, ok := m.transitions[t.from]
	if !ok {
		byEvent = make(map[E][]transition[S, E])
		m.transitions[t.from] = byEvent
	}
	for _, existing := range byEvent[t.event] {
		if existing.to == t.to && len(existing.guards) == 0 && len(t.guards) == 0 {
			return fmt.Errorf("%w: %v --%v--> %v", ErrDuplicateTransition, t.from, t.event, t.to)
		}
	}
	byEvent[t.event] = append(byEvent[t.event], t)
	return nil
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Is reports whether the machine is in state s.
func (m *Machine[S, E]) Is(s S) bool {
	return m.Current() == s
}

// Fire applies event and returns the new state. On error the state is
// unchanged and the current state is returned.
func (m *Machine[S, E]) Fire(ctx context.Context, event E) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.find(ctx, event)
	if err != nil {
		return m.current, err
	}
	for _, action := range t.actions {
		if err := action(ctx, m.current, t.to, event); err != nil {
			return m.current, errors.Join(ErrActionFailed, err)
		}
	}
	m.current = t.to
	return m.current, nil
}

// CanFire reports whether Fire(event) would succeed right now, ignoring
// action failures.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.find(ctx, event)
	return err == nil
}

// Reset moves the machine back to its initial state.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

// find must be called with mu held.
func (m *Machine[S, E]) find(ctx context.Context, event E) (*transition[S, E], error) {
	candidates := m.transitions[m.current][event]
	if len(candidates) == 0 {
		return nil, &ErrNoTransitionAvailable{State: fmt.Sprint(m.current), Event: fmt.Sprint(event)}
	}

	// First transition whose guards pass wins.
	for i := range candidates {
		if m.allowed(ctx, &candidates[i], event) {
			return &candidates[i], nil
		}
	}
	return nil, &ErrTransitionRejected{State: fmt.Sprint(m.current), Event: fmt.Sprint(event)}
}

func (m *Machine[S, E]) allowed(ctx context.Context, t *transition[S, E], event E) bool {
	for _, g := range t.guards {
		if !g(ctx, m.current, event) {
			return false
		}
	}
	return true
}
