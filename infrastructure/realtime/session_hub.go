package realtime

import (
	"encoding/json"
	"sync"

	"post-manager/domain/model"

	"github.com/gin-gonic/gin"
)

// Hub fans session events out to SSE subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan model.SessionEvent]struct{}
}

func NewSessionHub() *Hub {
	return &Hub{subs: make(map[chan model.SessionEvent]struct{})}
}

// Serve streams session_state events until the client goes away.
// initial is written first so a new tab learns the current state.
func (h *Hub) Serve(c *gin.Context, initial model.SessionEvent) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	writeEvent(c, initial)

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(c, evt)
		}
	}
}

func writeEvent(c *gin.Context, evt model.SessionEvent) {
	data, _ := json.Marshal(evt)
	_, _ = c.Writer.Write([]byte("event: session_state\n"))
	_, _ = c.Writer.Write([]byte("data: "))
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *Hub) Subscribe() chan model.SessionEvent {
	ch := make(chan model.SessionEvent, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan model.SessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast never blocks; slow subscribers miss events.
func (h *Hub) Broadcast(evt model.SessionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
