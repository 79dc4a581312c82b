// Package queue provides a stable max-priority queue.
//
// Entries are ordered by a composite Key: higher Priority first, and for
// equal priorities the entry inserted first wins. The insertion serial makes
// the order strict, so extraction is deterministic.
package queue

import (
	"container/heap"
	"iter"
)

// Key orders entries within a Queue.
type Key struct {
	// Priority is the caller-supplied rank. Higher values extract first.
	Priority int

	// Serial is the insertion sequence number. Lower values extract first
	// among equal priorities.
	Serial uint64
}

// Before reports whether k extracts ahead of other.
func (k Key) Before(other Key) bool {
	if k.Priority != other.Priority {
		return k.Priority > other.Priority
	}
	return k.Serial < other.Serial
}

type item[T any] struct {
	value T
	key   Key
}

// entries implements heap.Interface.
type entries[T any] []item[T]

func (e entries[T]) Len() int           { return len(e) }
func (e entries[T]) Less(i, j int) bool { return e[i].key.Before(e[j].key) }
func (e entries[T]) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }

func (e *entries[T]) Push(x any) {
	*e = append(*e, x.(item[T]))
}

func (e *entries[T]) Pop() any {
	old := *e
	n := len(old)
	it := old[n-1]
	var zero item[T]
	old[n-1] = zero
	*e = old[:n-1]
	return it
}

// Queue is a binary-heap priority queue with FIFO tie-breaking.
// The zero value is an empty queue ready to use.
//
// Queue is not safe for concurrent use.
type Queue[T any] struct {
	items  entries[T]
	serial uint64
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Insert adds value with the given priority and returns the key it was
// stored under. The serial component comes from this queue's counter.
func (q *Queue[T]) Insert(value T, priority int) Key {
	key := Key{Priority: priority, Serial: q.serial}
	q.serial++
	heap.Push(&q.items, item[T]{value: value, key: key})
	return key
}

// InsertKey adds value under an existing key, verbatim. It is used to
// rebuild a queue while keeping the original ordering of its entries.
// The queue's counter is advanced past key.Serial so later Insert calls
// still rank behind the rebuilt entries.
func (q *Queue[T]) InsertKey(value T, key Key) {
	if key.Serial >= q.serial {
		q.serial = key.Serial + 1
	}
	heap.Push(&q.items, item[T]{value: value, key: key})
}

// Extract removes and returns the entry with the greatest key.
func (q *Queue[T]) Extract() (T, Key, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, Key{}, false
	}
	it := heap.Pop(&q.items).(item[T])
	return it.value, it.key, true
}

// Peek returns the entry with the greatest key without removing it.
func (q *Queue[T]) Peek() (T, Key, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, Key{}, false
	}
	return q.items[0].value, q.items[0].key, true
}

// Len returns the number of entries.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// IsEmpty reports whether the queue has no entries.
func (q *Queue[T]) IsEmpty() bool {
	return len(q.items) == 0
}

// Clone returns an independent copy of the queue, including its counter.
// Values are copied shallowly.
func (q *Queue[T]) Clone() *Queue[T] {
	c := &Queue[T]{serial: q.serial}
	if len(q.items) > 0 {
		c.items = make(entries[T], len(q.items))
		copy(c.items, q.items)
	}
	return c
}

// Drain returns a sequence that extracts entries in order as it is
// iterated. Iteration is destructive: entries yielded are gone from q.
// Stopping early leaves the remaining entries in place.
func (q *Queue[T]) Drain() iter.Seq2[T, Key] {
	return func(yield func(T, Key) bool) {
		for {
			v, k, ok := q.Extract()
			if !ok || !yield(v, k) {
				return
			}
		}
	}
}

// Values returns the values in extraction order without modifying q.
// The sequence works on a snapshot taken when iteration starts.
func (q *Queue[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range q.Clone().Drain() {
			if !yield(v) {
				return
			}
		}
	}
}
