package handlers

import (
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/lendops/query-management-api/internal/models"
	"github.com/lendops/query-management-api/internal/notify"
	"github.com/lendops/query-management-api/internal/utils"
)

const keepaliveInterval = 30 * time.Second

// EventsHandler serves the push stream and its polling fallback
type EventsHandler struct {
	hub *notify.Hub
}

// NewEventsHandler creates a new events handler instance
func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /events as a server-sent event stream. An optional
// team query parameter narrows the stream to one team's events; events
// without a team always pass through. The connection stays open until the
// client goes away.
func (h *EventsHandler) Stream(c *gin.Context) {
	team := models.NormalizeTeam(c.Query("team"))

	ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(ch)

	h.stream(c, ch, func(event notify.Event) bool {
		return team == "" || event.Team == "" || event.Team == team
	})
}

// StreamChat handles GET /queries/:queryId/chat/stream, pushing only chat
// events for one query
func (h *EventsHandler) StreamChat(c *gin.Context) {
	queryID := c.Param("queryId")

	ch := h.hub.SubscribeChat(queryID)
	defer h.hub.UnsubscribeChat(queryID, ch)

	h.stream(c, ch, func(notify.Event) bool { return true })
}

func (h *EventsHandler) stream(c *gin.Context, ch chan notify.Event, keep func(notify.Event) bool) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			if !keep(event) {
				continue
			}
			sse.Encode(c.Writer, sse.Event{
				Id:    strconv.FormatUint(event.Seq, 10),
				Event: event.Type,
				Data:  event,
			})
			c.Writer.Flush()
		case <-keepalive.C:
			sse.Encode(c.Writer, sse.Event{Event: "ping", Data: "keepalive"})
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

// UpdatesResponse is the polling fallback payload
type UpdatesResponse struct {
	LastSeq uint64         `json:"lastSeq"`
	Events  []notify.Event `json:"events"`
}

// Updates handles GET /updates?since= by replaying the retained event log
func (h *EventsHandler) Updates(c *gin.Context) {
	var since uint64
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.SendValidationError(c, "since must be a non-negative integer")
			return
		}
		since = parsed
	}

	events := h.hub.Since(since)
	if events == nil {
		events = []notify.Event{}
	}

	utils.SendOKResponse(c, UpdatesResponse{
		LastSeq: h.hub.LastSeq(),
		Events:  events,
	})
}
