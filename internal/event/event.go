package event

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Params holds named event parameters.
type Params map[string]any

// Get returns the value for key, or nil if it is absent.
func (p Params) Get(key string) any {
	return p[key]
}

// Has reports whether key is present, even with a nil value.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Clone returns a shallow copy. A nil Params clones to an empty map.
func (p Params) Clone() Params {
	c := make(Params, len(p))
	maps.Copy(c, p)
	return c
}

// Metadata contains standard information attached to every Event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that created the event.
	Source string
}

// Event is the default event value object.
//
// It carries a name, parameters, an optional target and a propagation flag.
// Listeners receive the same *Event and may mutate it; the dispatcher checks
// the flag after every listener.
type Event struct {
	name     string
	params   Params
	target   any
	stopped  bool
	metadata Metadata
}

// EventOption configures an Event.
type EventOption func(*Event)

// WithTarget sets the event target.
func WithTarget(target any) EventOption {
	return func(e *Event) {
		e.target = target
	}
}

// WithSource sets the metadata source.
func WithSource(source string) EventOption {
	return func(e *Event) {
		e.metadata.Source = source
	}
}

// NewEvent creates an event with the given name and parameters.
// The parameter map is copied.
func NewEvent(name string, params Params, opts ...EventOption) *Event {
	e := &Event{
		name:   name,
		params: params.Clone(),
		metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EventName returns the event name. It implements Namer.
func (e *Event) EventName() string {
	return e.name
}

// SetName renames the event.
func (e *Event) SetName(name string) {
	e.name = name
}

// Param returns a single parameter, or nil if it is absent.
func (e *Event) Param(key string) any {
	return e.params.Get(key)
}

// HasParam reports whether the parameter is set.
func (e *Event) HasParam(key string) bool {
	return e.params.Has(key)
}

// Params returns the parameter map. Listeners may modify it in place.
func (e *Event) Params() Params {
	if e.params == nil {
		e.params = make(Params)
	}
	return e.params
}

// SetParams replaces all parameters with a copy of params.
// It implements ParamSetter.
func (e *Event) SetParams(params Params) {
	e.params = params.Clone()
}

// SetParam sets a single parameter.
func (e *Event) SetParam(key string, value any) {
	e.Params()[key] = value
}

// Target returns the event target, usually the object that raised it.
func (e *Event) Target() any {
	return e.target
}

// SetTarget sets the event target.
func (e *Event) SetTarget(target any) {
	e.target = target
}

// IsPropagationStopped reports whether further listeners should be skipped.
// It implements Stoppable.
func (e *Event) IsPropagationStopped() bool {
	return e.stopped
}

// StopPropagation prevents any remaining listeners from running.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// SetPropagationStopped sets or clears the stop flag.
func (e *Event) SetPropagationStopped(stopped bool) {
	e.stopped = stopped
}

// Metadata returns the event metadata.
func (e *Event) Metadata() Metadata {
	return e.metadata
}
