package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ummahhub/community-api/internal/config"
	"github.com/ummahhub/community-api/internal/domain"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var calls []string
	d.Subscribe(EventReplyAdded, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventReplyAdded, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventThreadClosed, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventReplyAdded, ThreadID: "t1"}))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	reached := false
	d.Subscribe(EventThreadDeleted, func(context.Context, Event) error {
		panic("index unavailable")
	})
	d.Subscribe(EventThreadDeleted, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{ID: "evt-9", Type: EventThreadDeleted, ThreadID: "t1"}))
	assert.True(t, reached)
	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "index unavailable")
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	seen := map[EventType]int{}
	SubscribeAll(d, func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})
	for _, eventType := range AllEventTypes {
		require.NoError(t, d.Publish(context.Background(), Event{Type: eventType}))
	}
	assert.Len(t, seen, len(AllEventTypes))
}

func TestKafkaPublisherKeysByThread(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewKafkaPublisher(writer, zap.NewNop())
	d := NewInMemoryDispatcher(zap.NewNop())
	publisher.Register(d)

	event := Event{
		ID:        "e1",
		Type:      EventReplyAdded,
		ThreadID:  "thread-9",
		Actor:     Actor{Type: domain.SubjectTypePublic},
		Timestamp: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Payload:   ReplyPayload{ReplyID: "r1", AuthorName: "Amina", ReplyPreview: "Salam"},
	}
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "thread-9", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "reply_added", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "reply_added", decoded["type"])
	assert.Equal(t, "r1", decoded["payload"].(map[string]any)["reply_id"])

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	publisher := NewKafkaPublisher(&fakeWriter{err: errors.New("broker down")}, zap.NewNop())
	err := publisher.Handle(context.Background(), Event{Type: EventThreadDeleted, ThreadID: "t"})
	assert.ErrorContains(t, err, "publish thread_deleted")
}

func TestNewKafkaWriterDisabledWithoutBrokers(t *testing.T) {
	assert.Nil(t, NewKafkaWriter(config.KafkaConfig{Topic: "forum.events"}, zap.NewNop()))

	w := NewKafkaWriter(config.KafkaConfig{Brokers: []string{"k1:9092"}, Topic: "forum.events"}, zap.NewNop())
	require.NotNil(t, w)
	assert.Equal(t, "forum.events", w.Topic)
	assert.True(t, w.Async)
}
