// Package messaging implements the in-process event bus and the NATS
// forwarder for domain events.
package messaging

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus fans events out to subscribed handlers.
// Publish never blocks on a handler in async mode.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	asyncMode   bool
	workerPool  chan struct{}
	log         *logger.Logger
	closed      bool
	closeCh     chan struct{}
	wg          sync.WaitGroup
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode runs handlers on a bounded worker pool.
	AsyncMode bool

	// WorkerPoolSize is the number of concurrent handler executions in async mode.
	WorkerPoolSize int

	Logger *logger.Logger
}

// DefaultInMemoryEventBusConfig returns async mode with 10 workers.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		asyncMode:  config.AsyncMode,
		workerPool: make(chan struct{}, config.WorkerPoolSize),
		log:        config.Logger.With(logger.Component("event_bus")),
		closeCh:    make(chan struct{}),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.log.Debug("subscribed handler", logger.String("event_type", string(eventType)))
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish sends an event to all subscribed handlers. Handler errors are
// logged, not returned.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	if b.asyncMode {
		// Registered under the read lock so Close cannot miss it.
		b.wg.Add(len(handlers))
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		if b.asyncMode {
			go b.executeAsync(event, handler)
			continue
		}
		if err := b.execute(event, handler); err != nil {
			b.log.Error("handler error",
				logger.String("event_type", string(event.EventType())),
				logger.Err(err),
			)
		}
	}
	return nil
}

func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	defer b.wg.Done()

	select {
	case b.workerPool <- struct{}{}:
		defer func() { <-b.workerPool }()
	case <-b.closeCh:
		return
	}

	start := time.Now()
	if err := b.execute(event, handler); err != nil {
		b.log.Error("async handler error",
			logger.String("event_type", string(event.EventType())),
			logger.Latency(time.Since(start)),
			logger.Err(err),
		)
	}
}

// execute runs handler and converts a panic into ErrHandlerPanic.
func (b *InMemoryEventBus) execute(event shared.Event, handler shared.EventHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(event)
}

// Close stops accepting events and waits for running handlers.
// Handlers still waiting for a worker slot are dropped.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()

	b.log.Info("event bus closed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrHandlerPanic is returned when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")
)
