package event

import (
	"context"
	"iter"
	"log/slog"

	"github.com/dshills/soochak/internal/event/dispatch"
)

// Manager attaches listeners to events and dispatches events to them.
//
// Listeners for one event run synchronously in priority order, FIFO among
// equal priorities. A Stoppable event can halt delivery; a listener error
// halts delivery and is returned to the caller.
//
// Registry changes are safe for concurrent use. Dispatch iterates a snapshot,
// so listeners may attach or detach during a dispatch; the change applies to
// the next dispatch.
type Manager struct {
	registry   *Registry
	dispatcher *dispatch.SyncDispatcher
	logger     *slog.Logger
}

// NewManager creates a new event manager with the given options.
func NewManager(opts ...Option) *Manager {
	config := defaultManagerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	registry := config.registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Manager{
		registry:   registry,
		dispatcher: dispatch.NewSyncDispatcher(),
		logger:     config.logger,
	}
}

// Registry returns the manager's listener registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Attach registers a listener for an event identity (see NameOf).
// The default priority is PriorityNormal.
func (m *Manager) Attach(identity any, l Listener, opts ...AttachOption) (ListenerID, error) {
	if l == nil {
		return "", ErrNilListener
	}
	name, err := NameOf(identity)
	if err != nil {
		return "", err
	}

	var config attachConfig
	for _, opt := range opts {
		opt(&config)
	}

	id := m.registry.Insert(name, l, config.priority)
	m.logger.Debug("listener attached",
		"event", name,
		"listener", id,
		"priority", config.priority,
	)
	return id, nil
}

// AttachFunc is a convenience method for attaching a function listener.
func (m *Manager) AttachFunc(identity any, fn ListenerFunc, opts ...AttachOption) (ListenerID, error) {
	if fn == nil {
		return "", ErrNilListener
	}
	return m.Attach(identity, fn, opts...)
}

// Detach removes the first attachment of l for the event identity.
// Listeners are compared with ==; function listeners never match and must
// be removed with DetachID. Returns true if a listener was removed.
func (m *Manager) Detach(identity any, l Listener) bool {
	name, err := NameOf(identity)
	if err != nil {
		return false
	}

	removed := m.registry.Remove(name, func(_ ListenerID, candidate Listener) bool {
		return sameListener(candidate, l)
	})
	m.logger.Debug("listener detach", "event", name, "removed", removed)
	return removed
}

// DetachID removes the attachment with the given ID from the event identity.
// Returns true if it was found.
func (m *Manager) DetachID(identity any, id ListenerID) bool {
	name, err := NameOf(identity)
	if err != nil {
		return false
	}

	removed := m.registry.Remove(name, func(candidate ListenerID, _ Listener) bool {
		return candidate == id
	})
	m.logger.Debug("listener detach", "event", name, "listener", id, "removed", removed)
	return removed
}

// Clear removes every listener for the event identity.
// Clearing an event with no listeners is not an error.
func (m *Manager) Clear(identity any) error {
	name, err := NameOf(identity)
	if err != nil {
		return err
	}

	m.registry.Clear(name)
	m.logger.Debug("listeners cleared", "event", name)
	return nil
}

// ListenersForEvent returns the listeners that would receive event, in
// dispatch order. The sequence is a snapshot taken now; see Registry.Listeners.
// An invalid identity yields nothing.
func (m *Manager) ListenersForEvent(event any) iter.Seq[Listener] {
	name, err := NameOf(event)
	if err != nil {
		return func(func(Listener) bool) {}
	}
	return m.registry.Listeners(name)
}

// HasListeners reports whether any listener is attached to the identity.
func (m *Manager) HasListeners(identity any) bool {
	name, err := NameOf(identity)
	if err != nil {
		return false
	}
	return m.registry.Count(name) > 0
}

// Dispatch delivers event to its listeners and returns the same event,
// possibly modified by them.
//
// If a listener returns an error, the remaining listeners are skipped and
// the error is returned wrapped in a *ListenerError. Match the listener's
// own error with errors.Is or errors.As, not ==. Dispatching an event
// nobody listens to is a no-op.
func (m *Manager) Dispatch(ctx context.Context, event any) (any, error) {
	result, err := m.DispatchResult(ctx, event)
	return result.Event, err
}

// DispatchResult is like Dispatch but also reports how the dispatch ended.
func (m *Manager) DispatchResult(ctx context.Context, event any) (dispatch.Result, error) {
	name, err := NameOf(event)
	if err != nil {
		return dispatch.Result{Event: event}, err
	}

	result := m.dispatcher.Run(ctx, event, handlers(m.registry.Listeners(name)))
	m.logger.Debug("event dispatched",
		"event", name,
		"state", result.State.String(),
		"invoked", result.Invoked,
		"duration", result.Duration,
	)

	if result.Error != nil {
		return result, &ListenerError{
			Event:    name,
			Position: result.Invoked - 1,
			Err:      result.Error,
		}
	}
	return result, nil
}

// Trigger is a convenience wrapper around Dispatch.
//
// Given a name, it dispatches a new *Event carrying params. Given an event
// that implements ParamSetter, it replaces the event's parameters with
// params (when params is non-nil) before dispatching it. Any other event is
// dispatched unchanged.
func (m *Manager) Trigger(ctx context.Context, identity any, params Params) (any, error) {
	switch v := identity.(type) {
	case nil:
		return nil, ErrInvalidEvent
	case string:
		if v == "" {
			return nil, ErrInvalidEvent
		}
		return m.Dispatch(ctx, NewEvent(v, params))
	case ParamSetter:
		if params != nil {
			v.SetParams(params)
		}
	}
	return m.Dispatch(ctx, identity)
}

// Stats returns dispatch statistics.
func (m *Manager) Stats() dispatch.Stats {
	return m.dispatcher.Stats()
}

// handlers adapts a listener sequence for the dispatcher.
func handlers(listeners iter.Seq[Listener]) iter.Seq[dispatch.Handler] {
	return func(yield func(dispatch.Handler) bool) {
		for l := range listeners {
			if !yield(l) {
				return
			}
		}
	}
}
