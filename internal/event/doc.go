// Package event provides a synchronous, in-process event manager.
//
// Listeners are attached to named events and run in priority order when an
// event is dispatched. The manager is the single owner of listener state;
// create one at wiring time and pass it to the components that need it.
//
// # Architecture
//
//	                ┌──────────────────────────────────────┐
//	                │               Manager                 │
//	                │  - Attach / Detach / Clear            │
//	                │  - Dispatch / Trigger                 │
//	                └──────────────────────────────────────┘
//	                          │                     │
//	                          ▼                     ▼
//	                ┌─────────────────┐   ┌─────────────────────┐
//	                │    Registry     │   │  dispatch.Sync-     │
//	                │  name → queue   │   │  Dispatcher         │
//	                │  (snapshots)    │   │  - stop / fail-fast │
//	                └─────────────────┘   └─────────────────────┘
//	                          │
//	                          ▼
//	                ┌─────────────────┐
//	                │   queue.Queue   │
//	                │  stable heap    │
//	                └─────────────────┘
//
// # Event Names
//
// Every operation takes an event identity and resolves it to a name with
// NameOf:
//
//	"user.created"            - a string is its own name
//	event.NewEvent("x", nil)  - a Namer reports its own name ("x")
//	&OrderPlaced{}            - any other value is named by its type
//
// Use TypeName to attach by type without an instance:
//
//	m.Attach(event.TypeName[OrderPlaced](), listener)
//
// # Priority Ordering
//
// Higher priorities run first. Listeners with equal priority run in the
// order they were attached, including after detaches.
//
//   - PriorityHigh (100)
//   - PriorityNormal (0): default
//   - PriorityLow (-100)
//
// # Basic Usage
//
//	m := event.NewManager(event.WithLogger(logger))
//
//	id, err := m.AttachFunc("user.created", func(ctx context.Context, e any) error {
//	    evt := e.(*event.Event)
//	    return sendWelcome(ctx, evt.Param("id"))
//	}, event.WithPriority(event.PriorityHigh))
//
//	// Dispatch an event object
//	_, err = m.Dispatch(ctx, event.NewEvent("user.created", event.Params{"id": 123}))
//
//	// Or let Trigger build the event
//	_, err = m.Trigger(ctx, "user.created", event.Params{"id": 123})
//
//	m.DetachID("user.created", id)
//
// # Stopping Propagation
//
// Events implementing Stoppable are checked after each listener. Once
// IsPropagationStopped reports true, the remaining listeners are skipped.
// Other events always reach every listener.
//
// # Errors
//
// Dispatch is fail-fast. A listener error ends the dispatch and is returned
// as a *ListenerError; listeners after it do not run. Panics are not
// recovered.
//
// # Thread Safety
//
// Attach, Detach and Clear are safe for concurrent use. Dispatch reads a
// snapshot of the listener queue, so changes made while a dispatch is in
// progress apply from the next dispatch on. Listeners themselves run on the
// dispatching goroutine and must manage their own synchronization.
//
// # Subpackages
//
//   - queue: stable max-priority queue used for listener ordering
//   - dispatch: synchronous listener execution and dispatch results
package event
