// Package payment defines the Payment Ledger entities.
package payment

import (
	"context"
	"time"

	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/types"
)

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusVoided    Status = "voided"
)

// Method is the tender used to settle a payment.
type Method string

const (
	MethodCash    Method = "cash"
	MethodCard    Method = "card"
	MethodMobile  Method = "mobile"
	MethodVoucher Method = "voucher"
	MethodMixed   Method = "mixed"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodMobile, MethodVoucher, MethodMixed:
		return true
	}
	return false
}

// Payment settles part or all of an order. The idempotency key is unique per
// tenant; a replay with the same key returns the original payment and has no
// further effect.
type Payment struct {
	types.Entity
	types.Versioned
	ID             id.PaymentID `json:"id"`
	TenantID       string       `json:"tenant_id"`
	OrderID        id.OrderID   `json:"order_id"`
	Amount         types.Money  `json:"amount"`
	Method         Method       `json:"method"`
	Status         Status       `json:"status"`
	IdempotencyKey string       `json:"idempotency_key"`
	ExternalTxnID  string       `json:"external_txn_id,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	VoidedAt       *time.Time   `json:"voided_at,omitempty"`
	VoidReason     string       `json:"void_reason,omitempty"`
}

// Store is the persistence contract for payments. GetByIdempotencyKey is the
// replay check: it reports not-found when no payment carries the key.
type Store interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, tenantID string, paymentID id.PaymentID) (*Payment, error)
	GetPaymentByIdempotencyKey(ctx context.Context, tenantID, key string) (*Payment, error)
	ListPaymentsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*Payment, error)
	UpdatePayment(ctx context.Context, p *Payment) error
}
