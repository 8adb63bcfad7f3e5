// Package event is a small in-process event bus. Listeners receive the
// context of the code that fired the event.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

func listeners(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Handler(nil), handlers[event]...)
}

// Fire dispatches an event synchronously to all registered listeners. A
// panicking listener is logged and does not stop the others.
func Fire(ctx context.Context, event string, payload interface{}) {
	for _, h := range listeners(event) {
		call(ctx, event, h, payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately. Listeners get a context that outlives the caller's.
func FireAsync(ctx context.Context, event string, payload interface{}) {
	detached := context.WithoutCancel(ctx)
	for _, h := range listeners(event) {
		go call(detached, event, h, payload)
	}
}

func call(ctx context.Context, event string, h Handler, payload interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", event, "panic", rec)
		}
	}()
	h(ctx, payload)
}

// Count reports how many listeners are registered for event.
func Count(event string) int {
	mu.RLock()
	defer mu.RUnlock()
	return len(handlers[event])
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
