// Package cash defines cash registers, drawer sessions, and the movement
// ledger recorded against them.
package cash

import (
	"context"
	"time"

	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/types"
)

// Register is a physical till at a site. Movements attach to the open
// session of the register resolved for the sale.
type Register struct {
	types.Entity
	ID       id.CashRegisterID `json:"id"`
	TenantID string            `json:"tenant_id"`
	SiteID   string            `json:"site_id"`
	Name     string            `json:"name"`
}

// SessionStatus is the lifecycle state of a drawer session.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// Session is one open-to-close drawer period. ExpectedAmount accumulates
// as movements are recorded; CountedAmount is what the operator declares
// at close, and the difference is kept for reconciliation.
type Session struct {
	types.Entity
	types.Versioned
	ID             id.CashSessionID  `json:"id"`
	TenantID       string            `json:"tenant_id"`
	RegisterID     id.CashRegisterID `json:"register_id"`
	Status         SessionStatus     `json:"status"`
	OpenedBy       string            `json:"opened_by"`
	OpeningAmount  types.Money       `json:"opening_amount"`
	ExpectedAmount types.Money       `json:"expected_amount"`
	CountedAmount  types.Money       `json:"counted_amount"`
	Difference     types.Money       `json:"difference"`
	ClosedBy       string            `json:"closed_by,omitempty"`
	ClosedAt       *time.Time        `json:"closed_at,omitempty"`
}

// MovementType classifies a cash movement.
type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementRefund     MovementType = "refund"
	MovementDeposit    MovementType = "deposit"
	MovementWithdrawal MovementType = "withdrawal"
	MovementOpening    MovementType = "opening"
	MovementClosing    MovementType = "closing"
)

// Movement is one append-only entry in a session's cash ledger. Movements
// are never updated or deleted; corrections are new movements.
type Movement struct {
	types.Entity
	ID        id.CashMovementID `json:"id"`
	TenantID  string            `json:"tenant_id"`
	SessionID id.CashSessionID  `json:"session_id"`
	Type      MovementType      `json:"type"`
	Amount    types.Money       `json:"amount"`
	OrderID   id.OrderID        `json:"order_id,omitempty"`
	PaymentID id.PaymentID      `json:"payment_id,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	ActorID   string            `json:"actor_id"`
}

// Store is the persistence contract for registers, sessions, and movements.
// GetOpenCashSession returns the not-found sentinel when the register has no
// open session; callers decide whether that is fatal.
type Store interface {
	CreateCashRegister(ctx context.Context, r *Register) error
	GetCashRegister(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*Register, error)
	ListCashRegisters(ctx context.Context, tenantID, siteID string) ([]*Register, error)

	CreateCashSession(ctx context.Context, s *Session) error
	GetCashSession(ctx context.Context, tenantID string, sessionID id.CashSessionID) (*Session, error)
	GetOpenCashSession(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*Session, error)
	UpdateCashSession(ctx context.Context, s *Session) error

	CreateCashMovement(ctx context.Context, m *Movement) error
	ListCashMovements(ctx context.Context, tenantID string, sessionID id.CashSessionID) ([]*Movement, error)
}
