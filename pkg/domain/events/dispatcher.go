package events

import (
	"context"
	"fmt"
	"sync"
)

// EventHandlerFunc is a function that handles a domain event.
type EventHandlerFunc func(ctx context.Context, event DomainEvent) error

// HandlerRegistration represents a handler registration for specific event types.
type HandlerRegistration struct {
	EventTypes []string
	Handler    EventHandlerFunc
	Name       string // For logging/debugging
}

// Publisher is what scan code depends on to emit events.
type Publisher interface {
	Dispatch(ctx context.Context, event DomainEvent) error
}

// EventDispatcher dispatches domain events to registered handlers.
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	// ContinueOnError determines if dispatch should continue when a handler fails
	ContinueOnError bool
}

type namedHandler struct {
	name    string
	handler EventHandlerFunc
}

// NewEventDispatcher creates a dispatcher that runs every handler even when
// one fails; a failing progress sink must not hide later handlers.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers:        make(map[string][]namedHandler),
		ContinueOnError: true,
	}
}

// Register registers a handler for specific event types.
func (d *EventDispatcher) Register(reg HandlerRegistration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	nh := namedHandler{name: reg.Name, handler: reg.Handler}
	for _, eventType := range reg.EventTypes {
		d.handlers[eventType] = append(d.handlers[eventType], nh)
	}
}

// RegisterHandler registers a single handler for event types.
func (d *EventDispatcher) RegisterHandler(name string, handler EventHandlerFunc, eventTypes ...string) {
	d.Register(HandlerRegistration{
		Name:       name,
		Handler:    handler,
		EventTypes: eventTypes,
	})
}

// RegisterWildcard registers a handler for all events.
func (d *EventDispatcher) RegisterWildcard(name string, handler EventHandlerFunc) {
	d.RegisterHandler(name, handler, "*")
}

// Dispatch runs the handlers of the event type, then the wildcard handlers.
func (d *EventDispatcher) Dispatch(ctx context.Context, event DomainEvent) error {
	d.mu.RLock()
	var handlers []namedHandler
	handlers = append(handlers, d.handlers[event.EventType()]...)
	handlers = append(handlers, d.handlers["*"]...)
	continueOnError := d.ContinueOnError
	d.mu.RUnlock()

	var errs []error
	for _, nh := range handlers {
		if err := nh.handler(ctx, event); err != nil {
			handlerErr := fmt.Errorf("handler %s failed for event %s: %w", nh.name, event.EventType(), err)
			if !continueOnError {
				return handlerErr
			}
			errs = append(errs, handlerErr)
		}
	}

	if len(errs) > 0 {
		return &DispatchError{Errors: errs}
	}
	return nil
}

// HandlerCount returns the number of handlers that receive eventType.
func (d *EventDispatcher) HandlerCount(eventType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	count := len(d.handlers[eventType])
	if eventType != "*" {
		count += len(d.handlers["*"])
	}
	return count
}

// DispatchError contains multiple errors from event dispatch.
type DispatchError struct {
	Errors []error
}

func (e *DispatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("multiple dispatch errors (%d)", len(e.Errors))
}

// Unwrap returns the first error for errors.Is/As support.
func (e *DispatchError) Unwrap() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}
