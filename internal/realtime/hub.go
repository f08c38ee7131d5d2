// Package realtime pushes device-scoped events to dashboard widgets
// over WebSocket connections.
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	sendBuffer   = 16
)

// Event is the envelope every subscriber receives.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans device events out to the widgets subscribed to that device.
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				// Basic same-origin check; good enough for a LAN service.
				return strings.Contains(origin, "://"+strings.TrimSpace(r.Host))
			},
		},
		subs: make(map[string]map[*client]struct{}),
	}
}

// Publish sends an event to every subscriber of the device. Slow
// subscribers are dropped rather than blocking the publisher.
func (h *Hub) Publish(deviceID, event string, payload any) {
	data, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		log.Printf("realtime: marshal %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	var stale []*client
	for c := range h.subs[deviceID] {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		h.dropLocked(deviceID, c)
	}
	h.mu.Unlock()
}

// ServeDevice upgrades the request and streams the device's events
// until the peer goes away.
func (h *Hub) ServeDevice(w http.ResponseWriter, r *http.Request, deviceID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.subs[deviceID] == nil {
		h.subs[deviceID] = make(map[*client]struct{})
	}
	h.subs[deviceID][c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)

	// Read loop: widgets only listen, so anything inbound is discarded.
	// A read error means the peer is gone.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.dropLocked(deviceID, c)
	h.mu.Unlock()
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	_ = c.conn.Close()
}

// dropLocked removes a client. Callers hold h.mu.
func (h *Hub) dropLocked(deviceID string, c *client) {
	if set, ok := h.subs[deviceID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
			if len(set) == 0 {
				delete(h.subs, deviceID)
			}
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for deviceID, set := range h.subs {
		for c := range set {
			delete(set, c)
			close(c.send)
		}
		delete(h.subs, deviceID)
	}
}
