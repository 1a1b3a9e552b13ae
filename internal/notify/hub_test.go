package notify

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(capacity int) *Hub {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewHub(capacity, logger)
}

func TestPublishAssignsIncreasingSeq(t *testing.T) {
	hub := newTestHub(10)

	first := hub.Publish(Event{Type: EventQueryCreated})
	second := hub.Publish(Event{Type: EventQueryUpdated})

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.NotZero(t, first.At)
	assert.Equal(t, uint64(2), hub.LastSeq())
}

func TestSubscriberReceivesEvents(t *testing.T) {
	hub := newTestHub(10)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.Publish(Event{Type: EventQueryCreated, QueryID: "QRY-1"})

	event := <-ch
	assert.Equal(t, EventQueryCreated, event.Type)
	assert.Equal(t, "QRY-1", event.QueryID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := newTestHub(10)
	ch := hub.Subscribe()
	hub.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// Double unsubscribe must not panic.
	hub.Unsubscribe(ch)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := newTestHub(100)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// Fill the subscriber buffer well past its capacity.
	for i := 0; i < 64; i++ {
		hub.Publish(Event{Type: EventQueryUpdated})
	}

	assert.Equal(t, uint64(64), hub.LastSeq())
}

func TestSinceReplaysRetainedEvents(t *testing.T) {
	hub := newTestHub(10)

	for i := 0; i < 5; i++ {
		hub.Publish(Event{Type: EventQueryUpdated})
	}

	events := hub.Since(3)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(4), events[0].Seq)
	assert.Equal(t, uint64(5), events[1].Seq)

	assert.Len(t, hub.Since(0), 5)
	assert.Empty(t, hub.Since(5))
}

func TestLogCapacityBound(t *testing.T) {
	hub := newTestHub(3)

	for i := 0; i < 10; i++ {
		hub.Publish(Event{Type: EventQueryUpdated})
	}

	events := hub.Since(0)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(8), events[0].Seq)
	assert.Equal(t, uint64(10), events[2].Seq)
}

func TestChatSubscriberScopedToQuery(t *testing.T) {
	hub := newTestHub(10)
	ch := hub.SubscribeChat("QRY-1")
	defer hub.UnsubscribeChat("QRY-1", ch)

	hub.Publish(Event{Type: EventChatMessage, QueryID: "QRY-2"})
	hub.Publish(Event{Type: EventQueryUpdated, QueryID: "QRY-1"})
	hub.Publish(Event{Type: EventChatMessage, QueryID: "QRY-1"})

	event := <-ch
	assert.Equal(t, EventChatMessage, event.Type)
	assert.Equal(t, "QRY-1", event.QueryID)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra event: %+v", extra)
	default:
	}
}
