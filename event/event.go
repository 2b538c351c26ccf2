// Package event provides the synchronous in-process event bus that links
// the order ledger to print routing, cash recording, and any registered
// extension subscribers.
package event

import (
	"fmt"
	"time"

	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/types"
)

// OrderConfirmed is published after an order transitions to confirmed and
// its consumption records exist. Line snapshots are carried on the event so
// subscribers never re-read order state that may have moved on.
type OrderConfirmed struct {
	TenantID   string
	SiteID     string
	OrderID    id.OrderID
	TableID    string
	OrderType  string
	Lines      []ConfirmedLine
	OccurredAt time.Time
}

// ConfirmedLine is the snapshot of one confirmed line at publish time.
type ConfirmedLine struct {
	LineID    id.OrderLineID
	ItemID    string
	ItemName  string
	Quantity  int64
	Modifiers []string
	Notes     string
}

// NewOrderConfirmed builds the event, failing fast on missing identity
// fields so a malformed event never reaches a subscriber.
func NewOrderConfirmed(tenantID, siteID string, orderID id.OrderID, lines []ConfirmedLine) (*OrderConfirmed, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("event: order confirmed: tenant ID is required")
	}
	if siteID == "" {
		return nil, fmt.Errorf("event: order confirmed: site ID is required")
	}
	if orderID.IsNil() {
		return nil, fmt.Errorf("event: order confirmed: order ID is required")
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("event: order confirmed: at least one line is required")
	}

	return &OrderConfirmed{
		TenantID:   tenantID,
		SiteID:     siteID,
		OrderID:    orderID,
		Lines:      lines,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// PaymentCompleted is published after a payment reaches completed state.
type PaymentCompleted struct {
	TenantID   string
	SiteID     string
	OrderID    id.OrderID
	PaymentID  id.PaymentID
	Amount     types.Money
	Method     string
	ActorID    string
	OccurredAt time.Time
}

// NewPaymentCompleted builds the event, failing fast on missing identity
// fields and non-positive amounts.
func NewPaymentCompleted(tenantID, siteID string, orderID id.OrderID, paymentID id.PaymentID, amount types.Money, method string) (*PaymentCompleted, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("event: payment completed: tenant ID is required")
	}
	if siteID == "" {
		return nil, fmt.Errorf("event: payment completed: site ID is required")
	}
	if orderID.IsNil() {
		return nil, fmt.Errorf("event: payment completed: order ID is required")
	}
	if paymentID.IsNil() {
		return nil, fmt.Errorf("event: payment completed: payment ID is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("event: payment completed: amount must be positive, got %s", amount)
	}
	if method == "" {
		return nil, fmt.Errorf("event: payment completed: method is required")
	}

	return &PaymentCompleted{
		TenantID:   tenantID,
		SiteID:     siteID,
		OrderID:    orderID,
		PaymentID:  paymentID,
		Amount:     amount,
		Method:     method,
		OccurredAt: time.Now().UTC(),
	}, nil
}
