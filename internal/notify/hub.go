package notify

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lendops/query-management-api/pkg/utils"
)

// Event types published on the hub
const (
	EventQueryCreated    = "query_created"
	EventQueryUpdated    = "query_updated"
	EventGroupResolved   = "group_resolved"
	EventChatMessage     = "chat_message"
	EventSanctionRemoved = "sanctioned_case_removed"
)

// Event is one broadcastable update. Seq is assigned by the hub at publish
// time and increases monotonically for the life of the process.
type Event struct {
	Seq     uint64      `json:"seq"`
	Type    string      `json:"type"`
	QueryID string      `json:"queryId,omitempty"`
	AppNo   string      `json:"appNo,omitempty"`
	Team    string      `json:"team,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	At      int64       `json:"at"`
}

// Hub fans events out to subscribers and keeps a bounded replay log for
// polling clients. Publishing never blocks; a subscriber that cannot keep
// up loses events rather than stalling the writer.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	chatSubs    map[string]map[chan Event]struct{}
	log         []Event
	logCapacity int
	nextSeq     uint64
	logger      *logrus.Logger
}

// NewHub creates a hub with a replay log of the given capacity
func NewHub(logCapacity int, logger *logrus.Logger) *Hub {
	if logCapacity <= 0 {
		logCapacity = 1000
	}
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		chatSubs:    make(map[string]map[chan Event]struct{}),
		log:         make([]Event, 0, logCapacity),
		logCapacity: logCapacity,
		nextSeq:     1,
		logger:      logger,
	}
}

// Subscribe registers a listener for all events
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 32)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener and closes its channel
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// SubscribeChat registers a listener for chat events on one sub-query
func (h *Hub) SubscribeChat(queryID string) chan Event {
	ch := make(chan Event, 32)

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.chatSubs[queryID]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.chatSubs[queryID] = subs
	}
	subs[ch] = struct{}{}
	return ch
}

// UnsubscribeChat removes a chat listener and closes its channel
func (h *Hub) UnsubscribeChat(queryID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.chatSubs[queryID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; ok {
		delete(subs, ch)
		close(ch)
	}
	if len(subs) == 0 {
		delete(h.chatSubs, queryID)
	}
}

// Publish assigns a sequence number, records the event in the replay log
// and delivers it to all subscribers without blocking
func (h *Hub) Publish(event Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	event.Seq = h.nextSeq
	h.nextSeq++
	if event.At == 0 {
		event.At = utils.GetCurrentTimeMillis()
	}

	h.log = append(h.log, event)
	if len(h.log) > h.logCapacity {
		h.log = h.log[len(h.log)-h.logCapacity:]
	}

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.logger.WithField("seq", event.Seq).Warn("Dropping event for slow subscriber")
		}
	}

	if event.Type == EventChatMessage && event.QueryID != "" {
		for ch := range h.chatSubs[event.QueryID] {
			select {
			case ch <- event:
			default:
			}
		}
	}

	return event
}

// Since returns all logged events with Seq greater than the given sequence
// number, oldest first. A zero argument returns the whole retained log.
func (h *Hub) Since(seq uint64) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var result []Event
	for _, event := range h.log {
		if event.Seq > seq {
			result = append(result, event)
		}
	}

	return result
}

// LastSeq returns the most recently assigned sequence number
func (h *Hub) LastSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.nextSeq - 1
}
