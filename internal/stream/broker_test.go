package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ummahhub/community-api/internal/events"
)

func TestBrokerFiltersByThread(t *testing.T) {
	broker := NewBroker(8)
	t.Cleanup(broker.Close)

	all, closeAll := broker.Subscribe("")
	defer closeAll()
	one, closeOne := broker.Subscribe("t1")
	defer closeOne()

	broker.Publish(events.Event{ID: "1", ThreadID: "t1"})
	broker.Publish(events.Event{ID: "2", ThreadID: "t2"})

	assertReceives(t, all, "1", "2")
	assertReceives(t, one, "1")
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	broker := NewBroker(4)
	t.Cleanup(broker.Close)

	ch, unsubscribe := broker.Subscribe("t1")
	unsubscribe()
	assert.Equal(t, 0, broker.Publish(events.Event{ThreadID: "t1"}))

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestBrokerDropsStaleForSlowSubscriber(t *testing.T) {
	broker := NewBroker(1)
	t.Cleanup(broker.Close)

	ch, unsubscribe := broker.Subscribe("")
	defer unsubscribe()

	broker.Publish(events.Event{ID: "old"})
	broker.Publish(events.Event{ID: "new"})

	assertReceives(t, ch, "new")
}

func TestBrokerRegisteredOnDispatcher(t *testing.T) {
	broker := NewBroker(4)
	t.Cleanup(broker.Close)
	d := events.NewInMemoryDispatcher(nil)
	broker.Register(d)

	ch, unsubscribe := broker.Subscribe("")
	defer unsubscribe()
	require.Equal(t, 1, broker.Subscribers())

	require.NoError(t, d.Publish(context.Background(), events.Event{ID: "e", Type: events.EventThreadClosed, ThreadID: "t"}))
	assertReceives(t, ch, "e")
}

func TestBrokerClosedRejectsSubscribers(t *testing.T) {
	broker := NewBroker(4)
	broker.Close()

	ch, unsubscribe := broker.Subscribe("")
	defer unsubscribe()
	_, ok := <-ch
	assert.False(t, ok)
}

func assertReceives(t *testing.T, ch <-chan events.Event, ids ...string) {
	t.Helper()
	for _, id := range ids {
		select {
		case event := <-ch:
			require.Equal(t, id, event.ID)
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("timed out waiting for event %s", id)
		}
	}
	select {
	case event := <-ch:
		t.Fatalf("unexpected extra event %s", event.ID)
	case <-time.After(50 * time.Millisecond):
	}
}
