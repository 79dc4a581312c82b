package event

import (
	"context"
	"reflect"

	"github.com/google/uuid"
)

// Standard listener priorities. Higher values run first; any int is valid.
const (
	// PriorityHigh is for listeners that must observe an event before others.
	PriorityHigh = 100

	// PriorityNormal is the default priority.
	PriorityNormal = 0

	// PriorityLow is for listeners that should run last (auditing, metrics).
	PriorityLow = -100
)

// Listener is the interface for event listeners.
type Listener interface {
	// Handle processes an event.
	// The event parameter is type-erased; listeners should type-assert.
	Handle(ctx context.Context, event any) error
}

// ListenerFunc is a function adapter for Listener.
//
// Function values are not comparable, so a ListenerFunc cannot be detached
// by value. Keep the ListenerID returned by Attach and use DetachID instead.
type ListenerFunc func(ctx context.Context, event any) error

// Handle implements the Listener interface.
func (f ListenerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// ListenerOf adapts a function taking a concrete event type to a Listener.
// Events of any other type are skipped silently.
func ListenerOf[T any](fn func(ctx context.Context, event T) error) Listener {
	return ListenerFunc(func(ctx context.Context, event any) error {
		if e, ok := event.(T); ok {
			return fn(ctx, e)
		}
		return nil
	})
}

// ListenerID identifies one attachment of a listener.
type ListenerID string

// newListenerID generates a unique listener ID.
func newListenerID() ListenerID {
	return ListenerID(uuid.NewString())
}

// sameListener reports whether a and b are the same listener value.
// Listeners whose dynamic type is not comparable never match. A type can
// report comparable and still panic on ==, for example a struct whose
// interface field holds a func; such values never match either.
func sameListener(a, b Listener) (same bool) {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Namer is implemented by events that carry their own name.
type Namer interface {
	EventName() string
}

// Stoppable is implemented by events whose delivery can be halted.
type Stoppable interface {
	IsPropagationStopped() bool
}

// ParamSetter is implemented by events that accept a parameter map.
type ParamSetter interface {
	SetParams(params Params)
}
