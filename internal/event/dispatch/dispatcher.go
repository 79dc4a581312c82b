package dispatch

import (
	"context"
	"time"
)

// Handler is the interface for listeners run by a dispatcher.
// This mirrors the event.Listener interface to avoid circular imports.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// Stoppable is implemented by events that can halt delivery.
// This mirrors event.Stoppable.
type Stoppable interface {
	IsPropagationStopped() bool
}

// State is the lifecycle state of a single dispatch.
type State int

const (
	// StatePending means no handler has been invoked yet.
	StatePending State = iota

	// StateRunning means handlers are being invoked.
	StateRunning

	// StateStopped means a handler stopped propagation. Terminal.
	StateStopped

	// StateCompleted means every handler ran without stopping. Terminal.
	StateCompleted

	// StateFailed means a handler returned an error and the remaining
	// handlers were skipped. Terminal.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if no further handler can run in this state.
func (s State) IsTerminal() bool {
	return s == StateStopped || s == StateCompleted || s == StateFailed
}

// Result represents the outcome of one dispatch.
type Result struct {
	// Event is the dispatched event, possibly mutated by handlers.
	Event any

	// State is the terminal state the dispatch reached.
	State State

	// Invoked is the number of handlers that were called, including
	// a handler that failed.
	Invoked int

	// Error is the error returned by the failing handler, if any.
	Error error

	// Duration is how long the dispatch took.
	Duration time.Duration
}

// IsStopped returns true if a handler stopped propagation.
func (r Result) IsStopped() bool {
	return r.State == StateStopped
}

// IsError returns true if a handler failed.
func (r Result) IsError() bool {
	return r.Error != nil
}
