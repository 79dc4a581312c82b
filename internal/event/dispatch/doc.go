// Package dispatch runs an ordered sequence of handlers against one event.
//
// The SyncDispatcher is deliberately fail-fast: the first handler error ends
// the dispatch, and handlers after it are never invoked. Panics are not
// recovered. Events implementing Stoppable can end a dispatch early by
// reporting that propagation stopped.
//
// # States
//
// Each Run moves through a small state machine:
//
//	Pending ──first handler──▶ Running ──stop flag──▶ Stopped
//	   │                          │
//	   │                          ├──handler error──▶ Failed
//	   │                          │
//	   └──────no handlers─────────┴──exhausted─────▶ Completed
//
// Stopped, Failed and Completed are terminal.
//
// # Usage
//
//	d := dispatch.NewSyncDispatcher()
//	result := d.Run(ctx, evt, slices.Values(handlers))
//	if result.IsError() {
//	    return result.Error
//	}
package dispatch
