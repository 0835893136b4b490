package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	q.Publish(Event{Action: ActionCreated, BookID: 1, Title: "Dune"})
	q.Publish(Event{Action: ActionUpdated, BookID: 1, Title: "Dune Messiah"})
	q.Publish(Event{Action: ActionDeleted, BookID: 1})

	ctx := context.Background()

	first, err := q.Consume(ctx)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, first.Action)
	require.Equal(t, "Dune", first.Title)

	second, err := q.Consume(ctx)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, second.Action)

	third, err := q.Consume(ctx)
	require.NoError(t, err)
	require.Equal(t, ActionDeleted, third.Action)
	require.Empty(t, third.Title)

	require.Equal(t, 0, q.Len())
}

func TestQueueConsumeBlocksUntilPublish(t *testing.T) {
	q := NewQueue()

	done := make(chan Event, 1)
	go func() {
		event, err := q.Consume(context.Background())
		if err == nil {
			done <- event
		}
	}()

	select {
	case <-done:
		t.Fatal("consume returned before publish")
	case <-time.After(20 * time.Millisecond):
	}

	q.Publish(Event{Action: ActionRead, BookID: 7, Title: "Hyperion"})

	select {
	case event := <-done:
		require.Equal(t, int64(7), event.BookID)
	case <-time.After(time.Second):
		t.Fatal("consume did not wake after publish")
	}
}

func TestQueueConsumeHonorsContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Consume(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueueCompetingConsumersEachEventDeliveredOnce(t *testing.T) {
	q := NewQueue()
	const events = 100
	const consumers = 4

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	seen := make(map[int64]int)
	var wg sync.WaitGroup
	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				event, err := q.Consume(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[event.BookID]++
				total := len(seen)
				mu.Unlock()
				if total == events {
					cancel()
				}
			}
		}()
	}

	for i := 0; i < events; i++ {
		q.Publish(Event{Action: ActionCreated, BookID: int64(i)})
	}

	wg.Wait()

	require.Len(t, seen, events)
	for id, count := range seen {
		require.Equalf(t, 1, count, "event %d delivered %d times", id, count)
	}
}

func TestQueuePublishNeverBlocksWithoutConsumers(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 10_000; i++ {
		q.Publish(Event{Action: ActionCreated, BookID: int64(i)})
	}
	require.Equal(t, 10_000, q.Len())
}
