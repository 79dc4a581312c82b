package event

import (
	"iter"
	"slices"
	"sync"

	"github.com/dshills/soochak/internal/event/queue"
)

// entry is one attachment stored in a listener queue.
type entry struct {
	id       ListenerID
	listener Listener
}

// Registry maps event names to listener queues.
// It is thread-safe for concurrent access.
//
// A name with no queue behaves exactly like a name with an empty queue.
type Registry struct {
	mu     sync.RWMutex
	queues map[string]*queue.Queue[entry]
}

// NewRegistry creates a new listener registry.
func NewRegistry() *Registry {
	return &Registry{
		queues: make(map[string]*queue.Queue[entry]),
	}
}

// Insert adds a listener for name at the given priority and returns the
// ID of the new attachment. The queue for name is created on first use.
func (r *Registry) Insert(name string, l Listener, priority int) ListenerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.queues[name]
	if !ok {
		q = queue.New[entry]()
		r.queues[name] = q
	}

	id := newListenerID()
	q.Insert(entry{id: id, listener: l}, priority)
	return id
}

// Clear replaces the queue for name with a fresh empty queue.
func (r *Registry) Clear(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queues[name] = queue.New[entry]()
}

// Remove drops the first attachment for name accepted by match.
//
// Priority queues have no arbitrary removal, so a clone of the queue is
// drained and every other entry is reinserted into a new queue under its
// original key. Relative order of the survivors is unchanged. The stored
// queue is replaced only after the walk completes, so a panicking match
// leaves it intact. Returns false if name has no queue or nothing matched.
func (r *Registry) Remove(name string, match func(id ListenerID, l Listener) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.queues[name]
	if !ok || old.IsEmpty() {
		return false
	}

	found := false
	rebuilt := queue.New[entry]()
	for e, key := range old.Clone().Drain() {
		if !found && match(e.id, e.listener) {
			found = true
			continue
		}
		rebuilt.InsertKey(e, key)
	}

	r.queues[name] = rebuilt
	return found
}

// Listeners returns the listeners for name, highest priority first and
// in attach order among equal priorities.
//
// The queue is cloned when Listeners is called. Each iteration drains its
// own copy of that snapshot, which costs a second clone but lets the
// sequence be iterated more than once.
// Later changes to the registry are not visible through it, and iterating
// it never modifies the registry. Call Listeners again for a fresh snapshot.
func (r *Registry) Listeners(name string) iter.Seq[Listener] {
	r.mu.RLock()
	q, ok := r.queues[name]
	var snapshot *queue.Queue[entry]
	if ok && !q.IsEmpty() {
		snapshot = q.Clone()
	}
	r.mu.RUnlock()

	return func(yield func(Listener) bool) {
		if snapshot == nil {
			return
		}
		for e := range snapshot.Values() {
			if !yield(e.listener) {
				return
			}
		}
	}
}

// Count returns the number of listeners attached to name.
func (r *Registry) Count(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if q, ok := r.queues[name]; ok {
		return q.Len()
	}
	return 0
}

// Names returns the sorted names that currently have listeners.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.queues))
	for name, q := range r.queues {
		if !q.IsEmpty() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Reset removes every queue.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queues = make(map[string]*queue.Queue[entry])
}
