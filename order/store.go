package order

import (
	"context"

	"github.com/xraph/brigade/id"
)

// Store is the persistence contract for order ledger entities. Every method
// takes the owning tenant explicitly; lookups outside the tenant report
// not-found. Updates are version-checked (compare-and-increment).
type Store interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, tenantID string, orderID id.OrderID) (*Order, error)
	ListOrders(ctx context.Context, tenantID string, opts ListOpts) ([]*Order, error)
	UpdateOrder(ctx context.Context, o *Order) error

	CreateLine(ctx context.Context, l *Line) error
	GetLine(ctx context.Context, tenantID string, lineID id.OrderLineID) (*Line, error)
	ListLines(ctx context.Context, tenantID string, orderID id.OrderID) ([]*Line, error)
	UpdateLine(ctx context.Context, l *Line) error
	DeleteLine(ctx context.Context, tenantID string, lineID id.OrderLineID) error

	CreateDiscount(ctx context.Context, d *Discount) error
	ListDiscounts(ctx context.Context, tenantID string, orderID id.OrderID) ([]*Discount, error)
	DeleteDiscount(ctx context.Context, tenantID string, discountID id.DiscountID) error

	CreateConsumption(ctx context.Context, c *Consumption) error
	ListConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) ([]*Consumption, error)
	VoidConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) error

	CreateWasteEntry(ctx context.Context, w *WasteEntry) error
}

// ListOpts filters order listings.
type ListOpts struct {
	SiteID string
	Status Status
	Limit  int
	Offset int
}
