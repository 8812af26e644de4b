package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/ummahhub/community-api/internal/events"
	"github.com/ummahhub/community-api/internal/stream"
)

// StreamHandler pushes forum events to browsers as server-sent events.
type StreamHandler struct {
	broker    *stream.Broker
	heartbeat time.Duration
}

// NewStreamHandler constructs handler. heartbeat keeps idle connections open through proxies.
func NewStreamHandler(broker *stream.Broker, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &StreamHandler{broker: broker, heartbeat: heartbeat}
}

// Stream GET /forum/stream, optionally narrowed with ?threadId=.
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	updates, cancel := h.broker.Subscribe(c.Query("threadId"))
	heartbeat := h.heartbeat

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case event, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, event); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			// a failed flush means the client went away
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
	return err
}
