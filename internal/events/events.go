package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types published by the front desk services.
const (
	ReservationSaved   = "reservation.saved"
	ReservationDeleted = "reservation.deleted"
	InvoiceSaved       = "invoice.saved"
)

// Event is a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus is an in-process pub/sub. Handlers run synchronously in subscription
// order and a failing handler does not stop the others.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewBus constructs an empty bus.
func NewBus(logger *zerolog.Logger) *Bus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Bus{subscribers: make(map[string][]Handler), logger: logger}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers and returns how many handlers failed.
func (b *Bus) Publish(event Event) int {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	failed := 0
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			failed++
			b.logger.Error().Err(err).Str("event", event.Type).Msg("event handler failed")
		}
	}
	return failed
}

// PublishJSON marshals payload and publishes it.
func (b *Bus) PublishJSON(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.Publish(Event{Type: eventType, Payload: data})
	return nil
}

// Async runs handler in its own goroutine so Publish returns immediately.
// Errors are logged since there is no caller left to receive them.
func Async(handler Handler, logger *zerolog.Logger) Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return func(event Event) error {
		go func() {
			if err := handler(event); err != nil {
				logger.Error().Err(err).Str("event", event.Type).Msg("async event handler failed")
			}
		}()
		return nil
	}
}
