package event

import (
	"context"
	"sync"
)

// Capacity is the maximum number of events a Queue retains.
const Capacity = 255

// Queue is a bounded FIFO of events shared between producers and the
// single consumer driving a computer. Pushing to a full queue drops the event.
type Queue struct {
	mu     sync.Mutex
	events []Event
	signal chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		events: make([]Event, 0, Capacity),
		signal: make(chan struct{}, 1),
	}
}

// Push appends e and reports whether it was retained.
// The waiting consumer is signalled when the queue becomes non-empty.
func (q *Queue) Push(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= Capacity {
		return false
	}

	q.events = append(q.events, e)
	if len(q.events) == 1 {
		q.Wake()
	}
	return true
}

// TryPop removes and returns the oldest event without blocking.
func (q *Queue) TryPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}

	e := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return e, true
}

// Pop blocks until an event is available or ctx is done.
func (q *Queue) Pop(ctx context.Context) (Event, error) {
	for {
		if e, ok := q.TryPop(); ok {
			return e, nil
		}

		select {
		case <-q.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Wait returns the channel signalled on the empty to non-empty transition
// and by Wake. It carries no event; call TryPop after receiving.
func (q *Queue) Wait() <-chan struct{} {
	return q.signal
}

// Wake releases a consumer blocked on Wait without pushing an event.
func (q *Queue) Wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = make([]Event, 0, Capacity)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.events)
}
