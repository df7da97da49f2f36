package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cvforge/cvforge/internal/core/events/bus"
	"github.com/cvforge/cvforge/internal/core/observability/log"
	"github.com/cvforge/cvforge/internal/core/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// sendBuffer is how many frames may queue per client before the hub gives up
// on it.
const sendBuffer = 16

// wsFrame is the wire shape of a pushed store event.
type wsFrame struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// wsClient is one connected editor. Frames queue on send and a dedicated
// goroutine writes them out, so a slow connection never blocks the store's
// publishers.
type wsClient struct {
	conn *websocket.Conn
	send chan wsFrame
	done chan struct{}
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump drains the send queue until the client is closed or a write
// fails.
func (c *wsClient) writePump() {
	for {
		select {
		case frame := <-c.send:
			if err := c.conn.WriteJSON(frame); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// hub fans store events out to connected websocket clients.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	subs    []bus.Subscription
	logger  log.Log
}

func newHub(logger log.Log) *hub {
	return &hub{
		clients: make(map[*wsClient]struct{}),
		logger:  logger,
	}
}

// attach subscribes the hub to every store event type.
func (h *hub) attach(events bus.EventBus) error {
	types := []string{
		store.EventTypeLoaded,
		store.EventTypeUpdated,
		store.EventTypeLayout,
		store.EventTypeStatus,
	}
	for _, eventType := range types {
		sub, err := events.Subscribe(eventType, h.forward)
		if err != nil {
			return err
		}
		h.subs = append(h.subs, sub)
	}
	return nil
}

// forward queues the event on every client without blocking: bus delivery is
// synchronous on the publisher's goroutine, so a stalled connection must not
// back-pressure store mutations. A client whose queue is full gets dropped.
func (h *hub) forward(e bus.Event) error {
	frame := wsFrame{
		Type:      e.Type(),
		Source:    e.Source(),
		Timestamp: e.Timestamp(),
		Data:      e.Data(),
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- frame:
		case <-c.done:
		default:
			h.logger.Debug("websocket client too slow, dropping")
			h.remove(c)
		}
	}
	return nil
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &wsClient{
		conn: conn,
		send: make(chan wsFrame, sendBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()

	// Clients only listen; the read loop exists to notice the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.remove(c)
	}()
}

// close cancels subscriptions and disconnects all clients.
func (h *hub) close() {
	for _, sub := range h.subs {
		_ = sub.Cancel()
	}
	h.subs = nil

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
