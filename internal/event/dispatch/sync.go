package dispatch

import (
	"context"
	"iter"
	"sync/atomic"
	"time"
)

// SyncDispatcher invokes handlers one after another in the caller's goroutine.
//
// Handler errors halt the dispatch and are reported in the Result. Panics are
// not recovered; they unwind through Run to the caller.
type SyncDispatcher struct {
	// Stats
	dispatched  atomic.Uint64
	invoked     atomic.Uint64
	stopped     atomic.Uint64
	completed   atomic.Uint64
	failed      atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher() *SyncDispatcher {
	return &SyncDispatcher{}
}

// Run delivers event to each handler in the order the sequence yields them.
//
// Whether the event is stoppable is decided once, before the first handler.
// After each handler returns, a stoppable event that reports propagation
// stopped ends the dispatch. The context is passed to handlers untouched;
// Run itself does not observe cancellation.
func (d *SyncDispatcher) Run(ctx context.Context, event any, handlers iter.Seq[Handler]) Result {
	d.dispatched.Add(1)
	start := time.Now()

	stoppable, isStoppable := event.(Stoppable)
	result := Result{Event: event, State: StatePending}

	for h := range handlers {
		result.State = StateRunning
		result.Invoked++
		d.invoked.Add(1)

		if err := h.Handle(ctx, event); err != nil {
			result.State = StateFailed
			result.Error = err
			break
		}
		if isStoppable && stoppable.IsPropagationStopped() {
			result.State = StateStopped
			break
		}
	}

	// An empty sequence and an exhausted sequence both complete.
	if !result.State.IsTerminal() {
		result.State = StateCompleted
	}
	result.Duration = time.Since(start)

	d.totalTimeNs.Add(result.Duration.Nanoseconds())
	switch result.State {
	case StateStopped:
		d.stopped.Add(1)
	case StateFailed:
		d.failed.Add(1)
	default:
		d.completed.Add(1)
	}

	return result
}

// Stats returns dispatch statistics.
// Note: Stats are read without a mutex, so values may be slightly inconsistent
// if stats are being updated concurrently.
func (d *SyncDispatcher) Stats() Stats {
	dispatched := d.dispatched.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return Stats{
		Dispatched:    dispatched,
		Invoked:       d.invoked.Load(),
		Stopped:       d.stopped.Load(),
		Completed:     d.completed.Load(),
		Failed:        d.failed.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// ResetStats resets all statistics to zero.
func (d *SyncDispatcher) ResetStats() {
	d.dispatched.Store(0)
	d.invoked.Store(0)
	d.stopped.Store(0)
	d.completed.Store(0)
	d.failed.Store(0)
	d.totalTimeNs.Store(0)
}

// Stats contains statistics for a sync dispatcher.
type Stats struct {
	// Dispatched is the total number of Run calls.
	Dispatched uint64

	// Invoked is the total number of handler invocations.
	Invoked uint64

	// Stopped is the number of dispatches halted by a stopped event.
	Stopped uint64

	// Completed is the number of dispatches that ran every handler.
	Completed uint64

	// Failed is the number of dispatches halted by a handler error.
	Failed uint64

	// TotalDuration is the cumulative time spent dispatching.
	TotalDuration time.Duration

	// AvgDuration is the average dispatch time.
	AvgDuration time.Duration
}
