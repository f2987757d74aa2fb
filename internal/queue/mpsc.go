// Package queue implements a lock-free multi-producer/single-consumer
// queue, modeled on the original allocator's util/OCQueue.h and
// util/LockLessQ.h intrusive queues.
//
// Those two headers disagree with each other on one critical point:
// OCQueue's enqueue swaps the tail pointer with the *new* node and links the
// previous tail's next to it; LockLessQ's enqueue swaps tail_ with an
// uninitialised local and never links anything, which drops every node but
// the first. This implementation follows OCQueue's (correct) algorithm.
package queue

import "sync/atomic"

type node[T any] struct {
	val  T
	next atomic.Pointer[node[T]]
}

// MPSC is a lock-free FIFO queue safe for any number of concurrent
// Enqueue callers, but only a single goroutine may call Dequeue at a time
// (the pool package serialises its consumer side behind the housekeeping
// lock; the demo driver's work queue has one dedicated consumer goroutine).
type MPSC[T any] struct {
	head *node[T]
	tail atomic.Pointer[node[T]]
	size atomic.Int64
}

// NewMPSC returns an empty queue.
func NewMPSC[T any]() *MPSC[T] {
	return &MPSC[T]{}
}

// Enqueue appends v to the tail of the queue. Safe for concurrent use by
// any number of producers.
func (q *MPSC[T]) Enqueue(v T) {
	n := &node[T]{val: v}
	predecessor := q.tail.Swap(n)
	q.size.Add(1)

	if predecessor == nil {
		// The queue was empty; I'm now the head too.
		q.head = n
		return
	}
	predecessor.next.Store(n)
}

// Dequeue removes and returns the head of the queue. Must not be called
// concurrently with another Dequeue.
func (q *MPSC[T]) Dequeue() (val T, ok bool) {
	head := q.head
	if head == nil {
		return val, false
	}

	next := head.next.Load()
	if next == nil {
		// Tentatively the only node. Try to also clear the tail so the
		// queue appears empty to producers. head is cleared before the CAS:
		// once the tail reads nil, the next Enqueue sets head to its own
		// node, and that write must not be overwritten here.
		q.head = nil
		if q.tail.CompareAndSwap(head, nil) {
			q.size.Add(-1)
			return head.val, true
		}
		q.head = head
		// A concurrent Enqueue raced us and has not yet linked its node
		// to head.next; spin until it does.
		for next == nil {
			next = head.next.Load()
		}
	}

	q.head = next
	q.size.Add(-1)
	return head.val, true
}

// Len returns an approximate size: producers and the consumer may be
// concurrently mutating the queue, so this is a snapshot, not a guarantee.
func (q *MPSC[T]) Len() int {
	if n := q.size.Load(); n > 0 {
		return int(n)
	}
	return 0
}

// Empty reports whether the queue currently has no head node.
func (q *MPSC[T]) Empty() bool {
	return q.head == nil
}
