// Package store defines the unified storage interface for Brigade.
package store

import (
	"context"

	"github.com/xraph/brigade/cash"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/printing"
)

// Store is the unified storage interface for all Brigade entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Update methods implement optimistic concurrency: the write succeeds only
// when the stored version matches the entity's version, and the stored
// version is incremented by one. A stale version yields ErrVersionConflict
// from the implementation, surfaced as the engine's conflict sentinel.
type Store interface {
	// Order methods
	CreateOrder(ctx context.Context, o *order.Order) error
	GetOrder(ctx context.Context, tenantID string, orderID id.OrderID) (*order.Order, error)
	ListOrders(ctx context.Context, tenantID string, opts order.ListOpts) ([]*order.Order, error)
	UpdateOrder(ctx context.Context, o *order.Order) error

	// Order line methods
	CreateLine(ctx context.Context, l *order.Line) error
	GetLine(ctx context.Context, tenantID string, lineID id.OrderLineID) (*order.Line, error)
	ListLines(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Line, error)
	UpdateLine(ctx context.Context, l *order.Line) error
	DeleteLine(ctx context.Context, tenantID string, lineID id.OrderLineID) error

	// Discount methods
	CreateDiscount(ctx context.Context, d *order.Discount) error
	ListDiscounts(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Discount, error)
	DeleteDiscount(ctx context.Context, tenantID string, discountID id.DiscountID) error

	// Consumption methods
	CreateConsumption(ctx context.Context, c *order.Consumption) error
	ListConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) ([]*order.Consumption, error)
	VoidConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) error

	// Waste methods
	CreateWasteEntry(ctx context.Context, w *order.WasteEntry) error

	// Payment methods
	CreatePayment(ctx context.Context, p *payment.Payment) error
	GetPayment(ctx context.Context, tenantID string, paymentID id.PaymentID) (*payment.Payment, error)
	GetPaymentByIdempotencyKey(ctx context.Context, tenantID, key string) (*payment.Payment, error)
	ListPaymentsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*payment.Payment, error)
	UpdatePayment(ctx context.Context, p *payment.Payment) error

	// Printer methods
	CreatePrinter(ctx context.Context, p *printing.Printer) error
	GetPrinter(ctx context.Context, tenantID string, printerID id.PrinterID) (*printing.Printer, error)
	ListPrinters(ctx context.Context, tenantID, siteID string) ([]*printing.Printer, error)
	UpdatePrinter(ctx context.Context, p *printing.Printer) error

	// Print job methods
	CreatePrintJob(ctx context.Context, j *printing.Job) error
	GetPrintJob(ctx context.Context, tenantID string, jobID id.PrintJobID) (*printing.Job, error)
	GetPrintJobByDedupeKey(ctx context.Context, tenantID, key string) (*printing.Job, error)
	ListPrintJobsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*printing.Job, error)
	UpdatePrintJob(ctx context.Context, j *printing.Job) error

	// Cash register methods
	CreateCashRegister(ctx context.Context, r *cash.Register) error
	GetCashRegister(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Register, error)
	ListCashRegisters(ctx context.Context, tenantID, siteID string) ([]*cash.Register, error)

	// Cash session methods
	CreateCashSession(ctx context.Context, s *cash.Session) error
	GetCashSession(ctx context.Context, tenantID string, sessionID id.CashSessionID) (*cash.Session, error)
	GetOpenCashSession(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Session, error)
	UpdateCashSession(ctx context.Context, s *cash.Session) error

	// Cash movement methods
	CreateCashMovement(ctx context.Context, m *cash.Movement) error
	ListCashMovements(ctx context.Context, tenantID string, sessionID id.CashSessionID) ([]*cash.Movement, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
