// Package optimistic tracks a locally applied change while the server
// request that makes it durable is in flight.
//
// A Tracker moves Idle -> Pending -> Confirmed or RolledBack. Only one
// mutation may be pending at a time; once it settles a new one may begin.
package optimistic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// State is where a Tracker is in its mutation lifecycle.
type State int

const (
	Idle State = iota
	Pending
	Confirmed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrInFlight is returned by Begin while another mutation is pending.
	ErrInFlight = errors.New("optimistic: a mutation is already in flight")
	// ErrNotPending is returned when settling a tracker with nothing pending.
	ErrNotPending = errors.New("optimistic: no mutation is pending")
)

// Tracker holds a value of type T and at most one pending mutation of it.
// It is safe for concurrent use.
type Tracker[T any] struct {
	mu         sync.Mutex
	state      State
	value      T
	snapshot   T
	mutationID string
}

// New returns an idle tracker holding initial.
func New[T any](initial T) *Tracker[T] {
	return &Tracker[T]{value: initial}
}

// Begin snapshots the current value and replaces it with next(current).
// It returns an ID for the mutation, suitable as an idempotency or
// correlation key on the request that confirms it.
func (t *Tracker[T]) Begin(next func(T) T) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Pending {
		return "", ErrInFlight
	}
	t.snapshot = t.value
	t.value = next(t.value)
	t.state = Pending
	t.mutationID = uuid.NewString()
	return t.mutationID, nil
}

// Confirm keeps the optimistic value.
func (t *Tracker[T]) Confirm() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Pending {
		return ErrNotPending
	}
	t.settle(Confirmed)
	return nil
}

// ConfirmWith settles the mutation with the server's authoritative value.
func (t *Tracker[T]) ConfirmWith(v T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Pending {
		return ErrNotPending
	}
	t.value = v
	t.settle(Confirmed)
	return nil
}

// Rollback restores the value captured by Begin.
func (t *Tracker[T]) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Pending {
		return ErrNotPending
	}
	t.value = t.snapshot
	t.settle(RolledBack)
	return nil
}

func (t *Tracker[T]) settle(s State) {
	var zero T
	t.snapshot = zero
	t.mutationID = ""
	t.state = s
}

// Value returns the value as currently displayed, optimistic or not.
func (t *Tracker[T]) Value() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// State returns the lifecycle state.
func (t *Tracker[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// MutationID returns the pending mutation's ID, or "" when none is pending.
func (t *Tracker[T]) MutationID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutationID
}
