// Package sse serves the stock feed as Server-Sent Events for clients that
// cannot hold a websocket open.
//
//	broker := sse.NewBroker()
//	router.Get("/api/events/stock", "events.stock", broker.Handler().ServeHTTP, authenticate)
//
//	broker.Publish("sale_committed", msg)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

const (
	heartbeat  = 25 * time.Second
	clientBuff = 16
)

// Stream represents an active SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
}

// New creates an SSE stream and sets the required headers.
// Returns nil if the ResponseWriter does not support flushing.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named event with a JSON data payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	return s.write(event, payload)
}

func (s *Stream) write(event string, payload []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// ─── Broker ───────────────────────────────────────────────────────────────────

type message struct {
	event   string
	payload []byte
}

// Broker fans published events out to every connected stream. A client
// whose buffer is full misses the event rather than blocking the publisher.
type Broker struct {
	mu      sync.Mutex
	clients map[chan message]struct{}
}

func NewBroker() *Broker {
	return &Broker{clients: make(map[chan message]struct{})}
}

// Publish encodes data once and queues it for every client.
func (b *Broker) Publish(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	msg := message{event: event, payload: payload}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
			logger.Warn("sse: client buffer full, dropping event", "event", event)
		}
	}
	return nil
}

// ClientCount returns the number of connected streams.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broker) subscribe() chan message {
	ch := make(chan message, clientBuff)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	metrics.SSEClients.Inc()
	return ch
}

func (b *Broker) unsubscribe(ch chan message) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	metrics.SSEClients.Dec()
}

// Handler streams events until the client disconnects.
func (b *Broker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stream := New(w, r)
		if stream == nil {
			return
		}
		ch := b.subscribe()
		defer b.unsubscribe(ch)

		tick := time.NewTicker(heartbeat)
		defer tick.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case msg := <-ch:
				if err := stream.write(msg.event, msg.payload); err != nil {
					return
				}
			case <-tick.C:
				if err := stream.Comment("ping"); err != nil {
					return
				}
			}
		}
	})
}
