package brigade

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/brigade/cash"
	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/types"
)

// sessionBumpRetries bounds re-reads when the expected-amount bump loses
// a version race against a concurrent movement.
const sessionBumpRetries = 3

// cashRecorder is the built-in PaymentCompleted subscriber that writes a
// sale movement into the open drawer session at the payment's site.
type cashRecorder struct {
	engine *Engine
}

func (r *cashRecorder) Name() string { return "brigade.cash-recorder" }

// OnPaymentCompleted records a sale movement for cash payments. Non-cash
// methods are ignored. A site with no open session is a logged warning,
// not an error: the payment already succeeded and a bookkeeping gap must
// not unwind it.
func (r *cashRecorder) OnPaymentCompleted(ctx context.Context, evt *event.PaymentCompleted) error {
	if payment.Method(evt.Method) != payment.MethodCash {
		return nil
	}

	session, err := r.engine.openSessionForSite(ctx, evt.TenantID, evt.SiteID)
	if err != nil {
		return err
	}
	if session == nil {
		r.engine.logger.Warn("cash payment with no open session",
			"tenant_id", evt.TenantID,
			"site_id", evt.SiteID,
			"payment_id", evt.PaymentID,
		)
		return nil
	}

	// The expected-amount bump goes first: a sale movement must never
	// exist without it. A version conflict means another movement landed
	// concurrently; re-read the session and try the bump again.
	for attempt := 0; ; attempt++ {
		session.ExpectedAmount = session.ExpectedAmount.Add(evt.Amount)
		session.Touch()
		err := r.engine.store.UpdateCashSession(ctx, session)
		if err == nil {
			break
		}
		if !IsConflict(err) || attempt >= sessionBumpRetries {
			return err
		}
		session, err = r.engine.store.GetCashSession(ctx, evt.TenantID, session.ID)
		if err != nil {
			return err
		}
		if session.Status != cash.SessionOpen {
			r.engine.logger.Warn("cash session closed before sale was recorded",
				"tenant_id", evt.TenantID,
				"session_id", session.ID,
				"payment_id", evt.PaymentID,
			)
			return nil
		}
	}

	m := &cash.Movement{
		Entity:    types.NewEntity(),
		ID:        id.NewCashMovementID(),
		TenantID:  evt.TenantID,
		SessionID: session.ID,
		Type:      cash.MovementSale,
		Amount:    evt.Amount,
		OrderID:   evt.OrderID,
		PaymentID: evt.PaymentID,
		Reason:    fmt.Sprintf("sale for order %s", evt.OrderID),
		ActorID:   evt.ActorID,
	}
	return r.engine.store.CreateCashMovement(ctx, m)
}

// openSessionForSite finds the most recently opened session still open
// among the site's registers. Returns nil with no error when there is none.
func (e *Engine) openSessionForSite(ctx context.Context, tenantID, siteID string) (*cash.Session, error) {
	registers, err := e.store.ListCashRegisters(ctx, tenantID, siteID)
	if err != nil {
		return nil, err
	}

	var latest *cash.Session
	for _, reg := range registers {
		s, err := e.store.GetOpenCashSession(ctx, tenantID, reg.ID)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}

	return latest, nil
}

// CreateCashRegister registers a till at a site.
func (e *Engine) CreateCashRegister(ctx context.Context, scope Scope, siteID, name string) (*cash.Register, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if siteID == "" {
		return nil, ValidationError{Field: "site_id", Message: "is required"}
	}
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "is required"}
	}

	r := &cash.Register{
		Entity:   types.NewEntity(),
		ID:       id.NewCashRegisterID(),
		TenantID: scope.TenantID,
		SiteID:   siteID,
		Name:     name,
	}

	if err := e.store.CreateCashRegister(ctx, r); err != nil {
		return nil, err
	}

	e.logger.Info("cash register created", "register_id", r.ID, "site_id", siteID)

	return r, nil
}

// OpenCashSession opens a drawer session on a register with a counted
// opening float, recording the opening movement. A register can have at
// most one open session.
func (e *Engine) OpenCashSession(ctx context.Context, scope Scope, registerID id.CashRegisterID, openingAmount types.Money) (*cash.Session, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if openingAmount.IsNegative() {
		return nil, ValidationError{Field: "opening_amount", Message: "must not be negative"}
	}

	if _, err := e.store.GetCashRegister(ctx, scope.TenantID, registerID); err != nil {
		return nil, err
	}

	if _, err := e.store.GetOpenCashSession(ctx, scope.TenantID, registerID); err == nil {
		return nil, fmt.Errorf("%w: register %s", ErrSessionOpen, registerID)
	} else if !IsNotFound(err) {
		return nil, err
	}

	s := &cash.Session{
		Entity:         types.NewEntity(),
		Versioned:      types.NewVersioned(),
		ID:             id.NewCashSessionID(),
		TenantID:       scope.TenantID,
		RegisterID:     registerID,
		Status:         cash.SessionOpen,
		OpenedBy:       scope.ActorID,
		OpeningAmount:  openingAmount,
		ExpectedAmount: openingAmount,
	}

	if err := e.store.CreateCashSession(ctx, s); err != nil {
		return nil, err
	}

	opening := &cash.Movement{
		Entity:    types.NewEntity(),
		ID:        id.NewCashMovementID(),
		TenantID:  scope.TenantID,
		SessionID: s.ID,
		Type:      cash.MovementOpening,
		Amount:    openingAmount,
		Reason:    "opening float",
		ActorID:   scope.ActorID,
	}
	if err := e.store.CreateCashMovement(ctx, opening); err != nil {
		return nil, err
	}

	e.logger.Info("cash session opened",
		"session_id", s.ID,
		"register_id", registerID,
		"opening_amount", openingAmount,
	)

	return s, nil
}

// CloseCashSession closes an open session against a counted drawer amount,
// recording the closing movement and the count-versus-expected difference.
func (e *Engine) CloseCashSession(ctx context.Context, scope Scope, sessionID id.CashSessionID, countedAmount types.Money) (*cash.Session, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	s, err := e.store.GetCashSession(ctx, scope.TenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != cash.SessionOpen {
		return nil, fmt.Errorf("%w: session %s", ErrSessionNotOpen, s.ID)
	}

	now := time.Now().UTC()
	s.Status = cash.SessionClosed
	s.CountedAmount = countedAmount
	s.Difference = countedAmount.Subtract(s.ExpectedAmount)
	s.ClosedBy = scope.ActorID
	s.ClosedAt = &now
	s.Touch()

	if err := e.store.UpdateCashSession(ctx, s); err != nil {
		return nil, err
	}

	closing := &cash.Movement{
		Entity:    types.NewEntity(),
		ID:        id.NewCashMovementID(),
		TenantID:  scope.TenantID,
		SessionID: s.ID,
		Type:      cash.MovementClosing,
		Amount:    countedAmount,
		Reason:    "closing count",
		ActorID:   scope.ActorID,
	}
	if err := e.store.CreateCashMovement(ctx, closing); err != nil {
		return nil, err
	}

	e.logger.Info("cash session closed",
		"session_id", s.ID,
		"expected", s.ExpectedAmount,
		"counted", countedAmount,
		"difference", s.Difference,
	)

	return s, nil
}

// RecordCashMovement records a manual deposit or withdrawal against an
// open session and adjusts the expected drawer amount.
func (e *Engine) RecordCashMovement(ctx context.Context, scope Scope, sessionID id.CashSessionID, movementType cash.MovementType, amount types.Money, reason string) (*cash.Movement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if movementType != cash.MovementDeposit && movementType != cash.MovementWithdrawal {
		return nil, ValidationError{Field: "type", Message: fmt.Sprintf("manual movements must be deposit or withdrawal, got %q", movementType)}
	}
	if !amount.IsPositive() {
		return nil, ValidationError{Field: "amount", Message: "must be positive"}
	}

	s, err := e.store.GetCashSession(ctx, scope.TenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != cash.SessionOpen {
		return nil, fmt.Errorf("%w: session %s", ErrSessionNotOpen, s.ID)
	}

	// Version-checked session write first: a conflict rejects the
	// movement cleanly and the caller retries against the fresh session.
	if movementType == cash.MovementWithdrawal {
		s.ExpectedAmount = s.ExpectedAmount.Subtract(amount)
	} else {
		s.ExpectedAmount = s.ExpectedAmount.Add(amount)
	}
	s.Touch()

	if err := e.store.UpdateCashSession(ctx, s); err != nil {
		return nil, err
	}

	m := &cash.Movement{
		Entity:    types.NewEntity(),
		ID:        id.NewCashMovementID(),
		TenantID:  scope.TenantID,
		SessionID: s.ID,
		Type:      movementType,
		Amount:    amount,
		Reason:    reason,
		ActorID:   scope.ActorID,
	}
	if err := e.store.CreateCashMovement(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// ListCashMovements lists the movements recorded in a session.
func (e *Engine) ListCashMovements(ctx context.Context, scope Scope, sessionID id.CashSessionID) ([]*cash.Movement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return e.store.ListCashMovements(ctx, scope.TenantID, sessionID)
}
