// Package order defines the Order Ledger entities: orders, order lines,
// discounts, consumption records, and waste entries.
package order

import (
	"time"

	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/types"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusOpen      Status = "open"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusClosed    Status = "closed"
	StatusVoided    Status = "voided"
)

// Payable reports whether payments may still be applied to an order in
// this status.
func (s Status) Payable() bool {
	return s != StatusClosed && s != StatusVoided
}

// Type distinguishes how an order is fulfilled.
type Type string

const (
	TypeDineIn   Type = "dine_in"
	TypeDelivery Type = "delivery"
	TypeTakeout  Type = "takeout"
)

// Valid reports whether t is a known order type.
func (t Type) Valid() bool {
	switch t {
	case TypeDineIn, TypeDelivery, TypeTakeout:
		return true
	}
	return false
}

// Order is the aggregate root of the fulfillment core. The total is always
// recomputed from lines and discounts, never incrementally patched.
type Order struct {
	types.Entity
	types.Versioned
	ID         id.OrderID  `json:"id"`
	TenantID   string      `json:"tenant_id"`
	SiteID     string      `json:"site_id"`
	TableID    string      `json:"table_id,omitempty"`
	CustomerID string      `json:"customer_id,omitempty"`
	Type       Type        `json:"type"`
	Status     Status      `json:"status"`
	Total      types.Money `json:"total"`
	Currency   string      `json:"currency"`
}

// LineStatus is the lifecycle state of an order line. It only advances
// from pending to confirmed, or to voided, never backwards.
type LineStatus string

const (
	LineStatusPending   LineStatus = "pending"
	LineStatusConfirmed LineStatus = "confirmed"
	LineStatusVoided    LineStatus = "voided"
)

// Line is a single item on an order. The unit price is snapshotted from the
// catalog when the line is added and never changes afterwards.
type Line struct {
	types.Entity
	types.Versioned
	ID        id.OrderLineID    `json:"id"`
	TenantID  string            `json:"tenant_id"`
	OrderID   id.OrderID        `json:"order_id"`
	ItemID    string            `json:"item_id"`
	ItemName  string            `json:"item_name"`
	Quantity  int64             `json:"quantity"`
	UnitPrice types.Money       `json:"unit_price"`
	Modifiers map[string]string `json:"modifiers,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Status    LineStatus        `json:"status"`
}

// Total returns unit price × quantity.
func (l *Line) Total() types.Money {
	return l.UnitPrice.Multiply(l.Quantity)
}

// DiscountType distinguishes percentage from fixed-amount discounts.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// Discount reduces an order's total. A nil LineID means the discount applies
// to the whole order. Discounts are immutable once created.
type Discount struct {
	types.Entity
	ID         id.DiscountID  `json:"id"`
	TenantID   string         `json:"tenant_id"`
	OrderID    id.OrderID     `json:"order_id"`
	LineID     id.OrderLineID `json:"line_id,omitempty"` // zero value targets the whole order
	Type       DiscountType   `json:"type"`
	Amount     types.Money    `json:"amount,omitempty"` // fixed_amount only
	Percentage int64          `json:"percentage,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	AppliedBy  string         `json:"applied_by"`
}

// Consumption is the auditable "this much was sold" record created exactly
// once per line at confirmation time. It survives later line mutation; a
// void sets VoidedAt rather than deleting the record.
type Consumption struct {
	types.Entity
	ID          id.ConsumptionID `json:"id"`
	TenantID    string           `json:"tenant_id"`
	LineID      id.OrderLineID   `json:"line_id"`
	Quantity    int64            `json:"quantity"`
	ConfirmedAt time.Time        `json:"confirmed_at"`
	VoidedAt    *time.Time       `json:"voided_at,omitempty"`
}

// WasteEntry records product loss when a confirmed line is voided with the
// record-waste flag set.
type WasteEntry struct {
	types.Entity
	ID       id.WasteEntryID `json:"id"`
	TenantID string          `json:"tenant_id"`
	SiteID   string          `json:"site_id"`
	LineID   id.OrderLineID  `json:"line_id"`
	ItemID   string          `json:"item_id"`
	Quantity int64           `json:"quantity"`
	Reason   string          `json:"reason"`
}
