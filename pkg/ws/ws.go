// Package ws pushes live updates to dashboard clients over gorilla/websocket.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//
//	router.Handle("/ws", "ws", hub.Handler(), authenticate)
//
//	_ = hub.BroadcastJSON("sale.committed", tx)
//
// Clients only receive; anything they send is read and dropped so pongs and
// close frames are handled.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// Event is the frame every broadcast is wrapped in.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ─── Client ───────────────────────────────────────────────────────────────────

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump drains the connection until it closes.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Hub tracks connected clients and fans broadcasts out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	count      atomic.Int64
}

// NewHub creates a Hub. Call Run in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run is the hub event loop; it closes every client when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			metrics.WSClients.Inc()
			logger.Info("ws: client connected", "total", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				logger.Info("ws: client disconnected", "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer.
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
	metrics.WSClients.Dec()
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Broadcast queues raw bytes for every client. It drops the message when
// the broadcast buffer is full rather than block a request.
func (h *Hub) Broadcast(msg []byte) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		logger.Warn("ws: broadcast buffer full, message dropped")
		return false
	}
}

// BroadcastJSON wraps data in an Event frame and broadcasts it.
func (h *Hub) BroadcastJSON(event string, data interface{}) error {
	b, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return err
	}
	h.Broadcast(b)
	return nil
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Handler upgrades the request and registers the connection with h.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithCtx(r.Context()).Error("ws: upgrade failed", "error", err)
			return
		}
		c := &client{hub: h, conn: conn, send: make(chan []byte, 64)}
		h.register <- c
		go c.writePump()
		go c.readPump()
	})
}
