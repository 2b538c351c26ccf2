package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Subscriber is the base interface all event subscribers implement.
// Subscribers opt into events by additionally implementing the typed
// interfaces below.
type Subscriber interface {
	Name() string
}

// OnOrderConfirmed receives order confirmation events. Returning an error
// aborts the publishing operation; later subscribers are not invoked.
type OnOrderConfirmed interface {
	Subscriber
	OnOrderConfirmed(ctx context.Context, evt *OrderConfirmed) error
}

// OnPaymentCompleted receives payment completion events.
type OnPaymentCompleted interface {
	Subscriber
	OnPaymentCompleted(ctx context.Context, evt *PaymentCompleted) error
}

// Bus dispatches events to subscribers synchronously, in registration
// order. Typed subscriber lists are cached at registration so dispatch
// never type-asserts.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	logger      *slog.Logger

	onOrderConfirmed   []OnOrderConfirmed
	onPaymentCompleted []OnPaymentCompleted
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{logger: slog.Default()}
}

// WithLogger sets the logger for the bus.
func (b *Bus) WithLogger(logger *slog.Logger) *Bus {
	b.logger = logger
	return b
}

// Subscribe adds a subscriber and caches its typed interfaces.
// Duplicate names are rejected.
func (b *Bus) Subscribe(s Subscriber) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.subscribers {
		if existing.Name() == s.Name() {
			return fmt.Errorf("event: duplicate subscriber: %s", s.Name())
		}
	}

	b.subscribers = append(b.subscribers, s)

	if v, ok := s.(OnOrderConfirmed); ok {
		b.onOrderConfirmed = append(b.onOrderConfirmed, v)
	}
	if v, ok := s.(OnPaymentCompleted); ok {
		b.onPaymentCompleted = append(b.onPaymentCompleted, v)
	}

	b.logger.Debug("event subscriber registered", "name", s.Name())

	return nil
}

// Subscribers returns the names of all registered subscribers in
// registration order.
func (b *Bus) Subscribers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, len(b.subscribers))
	for i, s := range b.subscribers {
		names[i] = s.Name()
	}
	return names
}

// PublishOrderConfirmed delivers the event to each OnOrderConfirmed
// subscriber in order. The first error stops dispatch and is returned
// wrapped with the failing subscriber's name.
func (b *Bus) PublishOrderConfirmed(ctx context.Context, evt *OrderConfirmed) error {
	b.mu.RLock()
	subs := b.onOrderConfirmed
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.OnOrderConfirmed(ctx, evt); err != nil {
			b.logger.Error("order confirmed subscriber failed",
				"subscriber", s.Name(),
				"order_id", evt.OrderID,
				"error", err,
			)
			return fmt.Errorf("event: subscriber %s: %w", s.Name(), err)
		}
	}

	return nil
}

// PublishPaymentCompleted delivers the event to each OnPaymentCompleted
// subscriber in order, stopping at the first error.
func (b *Bus) PublishPaymentCompleted(ctx context.Context, evt *PaymentCompleted) error {
	b.mu.RLock()
	subs := b.onPaymentCompleted
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.OnPaymentCompleted(ctx, evt); err != nil {
			b.logger.Error("payment completed subscriber failed",
				"subscriber", s.Name(),
				"payment_id", evt.PaymentID,
				"error", err,
			)
			return fmt.Errorf("event: subscriber %s: %w", s.Name(), err)
		}
	}

	return nil
}
