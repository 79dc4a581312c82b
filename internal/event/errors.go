package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event manager.
var (
	// ErrInvalidEvent is returned when an event identity is nil or resolves
	// to an empty name.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrNilListener is returned when a nil listener is attached.
	ErrNilListener = errors.New("listener cannot be nil")
)

// ListenerError wraps an error returned by a listener during dispatch.
type ListenerError struct {
	// Event is the resolved name of the event being dispatched.
	Event string

	// Position is the zero-based index of the failing listener in
	// dispatch order.
	Position int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d for event %q: %v", e.Position, e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}
