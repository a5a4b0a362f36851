package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrNilEvent is returned by EmitEvent for a nil event.
	ErrNilEvent = errors.New("nil event")

	// ErrNoHandlers is returned when an event is emitted before any handler
	// is registered. Nobody would act on it.
	ErrNoHandlers = errors.New("no event handlers registered")
)

// InMemoryEventEmitter dispatches events synchronously to every registered
// handler, in registration order.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter returns an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{logger: logger.With("component", "event_emitter")}
}

// RegisterHandler subscribes handler to every subsequent event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("event handler registered", "handler_count", n)
}

// EmitEvent delivers event to all handlers even when some fail, and returns
// the joined handler errors.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	log := e.logger.With("event_id", event.ID, "event_type", event.Type)
	if len(handlers) == 0 {
		log.WarnContext(ctx, "event dropped, no handlers registered")
		return ErrNoHandlers
	}

	var errs []error
	for i, h := range handlers {
		if err := h.HandleEvent(ctx, event); err != nil {
			log.ErrorContext(ctx, "event handler failed", "handler_index", i, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		log.DebugContext(ctx, "event delivered", "handler_count", len(handlers))
	}
	return errors.Join(errs...)
}
