package event

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/types"
)

type recordingSubscriber struct {
	name      string
	confirmed []*OrderConfirmed
	paid      []*PaymentCompleted
	failWith  error
}

func (s *recordingSubscriber) Name() string { return s.name }

func (s *recordingSubscriber) OnOrderConfirmed(_ context.Context, evt *OrderConfirmed) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.confirmed = append(s.confirmed, evt)
	return nil
}

func (s *recordingSubscriber) OnPaymentCompleted(_ context.Context, evt *PaymentCompleted) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.paid = append(s.paid, evt)
	return nil
}

func testOrderConfirmed(t *testing.T) *OrderConfirmed {
	t.Helper()
	evt, err := NewOrderConfirmed("tenant-1", "site-1", id.NewOrderID(), []ConfirmedLine{
		{LineID: id.NewOrderLineID(), ItemID: "itm-1", ItemName: "Espresso", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("NewOrderConfirmed: %v", err)
	}
	return evt
}

func TestBusDispatchOrder(t *testing.T) {
	bus := NewBus()
	first := &recordingSubscriber{name: "first"}
	second := &recordingSubscriber{name: "second"}

	if err := bus.Subscribe(first); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := bus.Subscribe(second); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	evt := testOrderConfirmed(t)
	if err := bus.PublishOrderConfirmed(context.Background(), evt); err != nil {
		t.Fatalf("PublishOrderConfirmed: %v", err)
	}

	if len(first.confirmed) != 1 || len(second.confirmed) != 1 {
		t.Fatalf("expected both subscribers to receive event, got %d and %d",
			len(first.confirmed), len(second.confirmed))
	}
}

func TestBusStopsOnFirstError(t *testing.T) {
	bus := NewBus()
	boom := errors.New("printer store down")
	failing := &recordingSubscriber{name: "failing", failWith: boom}
	after := &recordingSubscriber{name: "after"}

	if err := bus.Subscribe(failing); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := bus.Subscribe(after); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	err := bus.PublishOrderConfirmed(context.Background(), testOrderConfirmed(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped subscriber error, got %v", err)
	}

	if len(after.confirmed) != 0 {
		t.Fatalf("subscriber after the failure should not be invoked, got %d events", len(after.confirmed))
	}
}

func TestBusRejectsDuplicateNames(t *testing.T) {
	bus := NewBus()
	if err := bus.Subscribe(&recordingSubscriber{name: "dup"}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := bus.Subscribe(&recordingSubscriber{name: "dup"}); err == nil {
		t.Fatal("expected duplicate subscriber registration to fail")
	}
}

func TestNewOrderConfirmedValidation(t *testing.T) {
	tests := []struct {
		name     string
		tenantID string
		siteID   string
		orderID  id.OrderID
		lines    []ConfirmedLine
	}{
		{"missing tenant", "", "site-1", id.NewOrderID(), []ConfirmedLine{{}}},
		{"missing site", "tenant-1", "", id.NewOrderID(), []ConfirmedLine{{}}},
		{"nil order", "tenant-1", "site-1", id.Nil, []ConfirmedLine{{}}},
		{"no lines", "tenant-1", "site-1", id.NewOrderID(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOrderConfirmed(tt.tenantID, tt.siteID, tt.orderID, tt.lines); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNewPaymentCompletedValidation(t *testing.T) {
	orderID := id.NewOrderID()
	paymentID := id.NewPaymentID()

	if _, err := NewPaymentCompleted("tenant-1", "site-1", orderID, paymentID, types.USD(1500), "cash"); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}
	if _, err := NewPaymentCompleted("tenant-1", "site-1", orderID, paymentID, types.USD(0), "cash"); err == nil {
		t.Fatal("expected zero amount to be rejected")
	}
	if _, err := NewPaymentCompleted("tenant-1", "site-1", orderID, paymentID, types.USD(1500), ""); err == nil {
		t.Fatal("expected empty method to be rejected")
	}
}
