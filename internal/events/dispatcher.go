// Package events carries domain events between services and side-effect
// consumers. Dispatch is asynchronous and best-effort; a slow or failing
// subscriber never blocks the request path.
package events

import (
	"sync"

	"go.uber.org/zap"
)

// Event is a domain event with a name and payload.
type Event struct {
	Name    string
	Payload any
}

// Handler processes a dispatched event.
type Handler func(Event)

// Dispatcher fans events out to registered handlers in-process.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewDispatcher creates an event dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the named event.
func (d *Dispatcher) Subscribe(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Dispatch delivers the event to every subscriber on its own goroutine.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	handlers := d.handlers[event.Name]
	d.mu.RUnlock()

	for _, h := range handlers {
		go func(h Handler) {
			defer func() {
				if rec := recover(); rec != nil {
					d.logger.Error("event handler panic",
						zap.String("event", event.Name),
						zap.Any("panic", rec))
				}
			}()
			h(event)
		}(h)
	}
}
