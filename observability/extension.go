// Package observability provides a metrics extension for Brigade that records
// lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/payment"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ event.Subscriber         = (*MetricsExtension)(nil)
	_ event.OnOrderConfirmed   = (*MetricsExtension)(nil)
	_ event.OnPaymentCompleted = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Subscribe it on an Engine to automatically track fulfillment metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Order metrics
	OrderConfirmed Counter
	LinesConfirmed Counter
	LinesPerOrder  Histogram

	// Payment metrics
	PaymentCompleted Counter
	PaymentAmount    Histogram
	CashPayments     Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Order metrics
		OrderConfirmed: factory.Counter("brigade.order.confirmed"),
		LinesConfirmed: factory.Counter("brigade.order.lines.confirmed"),
		LinesPerOrder:  factory.Histogram("brigade.order.lines_per_confirmation"),

		// Payment metrics
		PaymentCompleted: factory.Counter("brigade.payment.completed"),
		PaymentAmount:    factory.Histogram("brigade.payment.amount"),
		CashPayments:     factory.Counter("brigade.payment.cash"),
	}
}

// Name implements event.Subscriber.
func (m *MetricsExtension) Name() string { return "metrics" }

// OnOrderConfirmed implements event.OnOrderConfirmed.
func (m *MetricsExtension) OnOrderConfirmed(_ context.Context, evt *event.OrderConfirmed) error {
	m.OrderConfirmed.Inc()
	m.LinesConfirmed.Add(float64(len(evt.Lines)))
	m.LinesPerOrder.Observe(float64(len(evt.Lines)))
	return nil
}

// OnPaymentCompleted implements event.OnPaymentCompleted.
func (m *MetricsExtension) OnPaymentCompleted(_ context.Context, evt *event.PaymentCompleted) error {
	m.PaymentCompleted.Inc()
	m.PaymentAmount.Observe(float64(evt.Amount.Amount))
	if evt.Method == string(payment.MethodCash) {
		m.CashPayments.Inc()
	}
	return nil
}
