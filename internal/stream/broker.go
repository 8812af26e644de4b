package stream

import (
	"context"
	"strings"
	"sync"

	"github.com/ummahhub/community-api/internal/events"
)

type subscriber struct {
	id       int64
	threadID string
	ch       chan events.Event
}

// Broker fans forum events out to live stream subscribers. Slow subscribers lose
// their oldest buffered event rather than blocking publication.
type Broker struct {
	mu          sync.RWMutex
	closed      bool
	nextID      int64
	bufferSize  int
	subscribers map[int64]subscriber
}

// NewBroker creates a broker with per-subscriber buffers of bufferSize.
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Broker{
		bufferSize:  bufferSize,
		subscribers: make(map[int64]subscriber),
	}
}

// Subscribe returns a channel of events, limited to threadID when it is not empty,
// and the function that cancels the subscription.
func (b *Broker) Subscribe(threadID string) (<-chan events.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan events.Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	sub := subscriber{id: b.nextID, threadID: strings.TrimSpace(threadID), ch: ch}
	b.subscribers[sub.id] = sub
	return ch, func() {
		b.unsubscribe(sub.id)
	}
}

// Publish delivers event to every matching subscriber and reports how many got it.
func (b *Broker) Publish(event events.Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}

	delivered := 0
	for _, sub := range b.subscribers {
		if sub.threadID != "" && sub.threadID != event.ThreadID {
			continue
		}
		if tryPublish(sub.ch, event) {
			delivered++
		}
	}
	return delivered
}

// Register subscribes the broker to every forum event.
func (b *Broker) Register(dispatcher events.Dispatcher) {
	events.SubscribeAll(dispatcher, func(_ context.Context, event events.Event) error {
		b.Publish(event)
		return nil
	})
}

// Subscribers reports the number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close ends every subscription.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

func (b *Broker) unsubscribe(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(sub.ch)
}

func tryPublish(ch chan events.Event, event events.Event) bool {
	select {
	case ch <- event:
		return true
	default:
		// drop the stalest event and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
			return true
		default:
			return false
		}
	}
}
