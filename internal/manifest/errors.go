package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction indicates a binding names an action that does not exist.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidBinding indicates a binding is missing a required field.
	ErrInvalidBinding = errors.New("invalid binding")

	// ErrActionFailed is wrapped by the errors the fail action returns.
	ErrActionFailed = errors.New("action failed")
)

// BindingError reports which binding of a manifest is unusable.
type BindingError struct {
	Index int
	Event string
	Err   error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("listener %d (%q): %v", e.Index, e.Event, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}
