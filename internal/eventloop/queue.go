// Package eventloop provides the single-consumer event queue that both the
// agent and the controller run their state machines on.
//
// Any number of goroutines may Push; exactly one goroutine calls Run (or Next)
// and is the only code allowed to touch the state the events mutate.
package eventloop

import (
	"context"
	"sync"
)

// Sink is the producer-only view of a Queue
type Sink[E any] interface {
	Push(event E)
}

// SinkFunc adapts a function to a Sink
type SinkFunc[E any] func(event E)

// Push calls f(event)
func (f SinkFunc[E]) Push(event E) {
	f(event)
}

// Queue is an unbounded FIFO multi-producer single-consumer queue.
// Push never blocks; a slow consumer accumulates memory instead.
type Queue[E any] struct {
	mu     sync.Mutex
	items  []E
	closed bool
	signal chan struct{}
}

// New creates an empty queue
func New[E any]() *Queue[E] {
	return &Queue[E]{
		signal: make(chan struct{}, 1),
	}
}

// Push enqueues an event. Events pushed after Close are dropped.
func (q *Queue[E]) Push(event E) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, event)
	q.mu.Unlock()

	q.wake()
}

// Len returns the number of queued events
func (q *Queue[E]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting events. The consumer drains what is already queued and then stops.
func (q *Queue[E]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wake()
}

// Next blocks until an event is available. It returns false once the queue
// is closed and drained, or when ctx is done.
func (q *Queue[E]) Next(ctx context.Context) (E, bool) {
	var zero E
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			event := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return event, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return zero, false
		}

		select {
		case <-ctx.Done():
			return zero, false
		case <-q.signal:
		}
	}
}

// Run consumes events in order until ctx is done or the queue is closed
func (q *Queue[E]) Run(ctx context.Context, handle func(E)) {
	for {
		event, ok := q.Next(ctx)
		if !ok {
			return
		}
		handle(event)
	}
}

func (q *Queue[E]) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
