// Package bus provides the in-process change-event queue consumed by SSE
// subscribers.
package bus

import (
	"context"
	"sync"
)

// Action identifies the store operation that produced an event.
type Action string

const (
	ActionCreated Action = "created"
	ActionRead    Action = "read"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is a transient change notification. Title is empty for deletions,
// since the record no longer exists.
type Event struct {
	Action Action `json:"action"`
	BookID int64  `json:"book_id"`
	Title  string `json:"title,omitempty"`
}

// Queue is an unbounded FIFO of events, one instance per process, created at
// startup and injected into publishers and the SSE handler.
//
// Delivery is competing-consumer: all subscribers drain the same queue, so
// each published event reaches exactly one of them. This is intentional and
// matches the service's notification contract; it is not a broadcast bus.
type Queue struct {
	mu    sync.Mutex
	items []Event
	wake  chan struct{}
}

func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Publish appends an event to the tail. It never blocks and never fails;
// the queue grows without bound if no consumer is draining it.
func (q *Queue) Publish(event Event) {
	q.mu.Lock()
	q.items = append(q.items, event)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Consume removes and returns the head, blocking until an event is available
// or ctx is done.
func (q *Queue) Consume(ctx context.Context) (Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			event := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()

			// Keep one wakeup pending for the next consumer.
			if remaining > 0 {
				select {
				case q.wake <- struct{}{}:
				default:
				}
			}
			return event, nil
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Len reports the current backlog.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
