package brigade

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/types"
)

// ProcessPaymentRequest carries the inputs for recording a payment.
type ProcessPaymentRequest struct {
	OrderID        id.OrderID
	Amount         types.Money
	Method         payment.Method
	IdempotencyKey string
}

// ProcessPayment records a completed payment against an order. Replays with
// an idempotency key already seen return the existing payment unchanged,
// with no new side effects. After a fresh payment, PaymentCompleted is
// published and the order auto-closes once completed payments cover the
// total. A subscriber error is returned alongside the payment: the payment
// itself is never unwound.
func (e *Engine) ProcessPayment(ctx context.Context, scope Scope, req ProcessPaymentRequest) (*payment.Payment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if req.IdempotencyKey == "" {
		return nil, ValidationError{Field: "idempotency_key", Message: "is required"}
	}
	if !req.Amount.IsPositive() {
		return nil, ValidationError{Field: "amount", Message: "must be positive"}
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayMethod, req.Method)
	}

	if existing, err := e.store.GetPaymentByIdempotencyKey(ctx, scope.TenantID, req.IdempotencyKey); err == nil {
		e.logger.Debug("payment replayed",
			"payment_id", existing.ID,
			"idempotency_key", req.IdempotencyKey,
		)
		return existing, nil
	} else if !IsNotFound(err) {
		return nil, err
	}

	o, err := e.store.GetOrder(ctx, scope.TenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.Payable() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotPayable, o.ID, o.Status)
	}
	if req.Amount.Currency != o.Currency {
		return nil, fmt.Errorf("%w: payment in %s, order in %s",
			ErrCurrencyMismatch, req.Amount.Currency, o.Currency)
	}

	now := time.Now().UTC()
	p := &payment.Payment{
		Entity:         types.NewEntity(),
		Versioned:      types.NewVersioned(),
		ID:             id.NewPaymentID(),
		TenantID:       scope.TenantID,
		OrderID:        o.ID,
		Amount:         req.Amount,
		Method:         req.Method,
		Status:         payment.StatusCompleted,
		IdempotencyKey: req.IdempotencyKey,
		CompletedAt:    &now,
	}

	if err := e.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	e.logger.Info("payment completed",
		"payment_id", p.ID,
		"order_id", o.ID,
		"amount", p.Amount,
		"method", p.Method,
	)

	evt, err := event.NewPaymentCompleted(scope.TenantID, o.SiteID, o.ID, p.ID, p.Amount, string(p.Method))
	if err != nil {
		return p, err
	}
	evt.ActorID = scope.ActorID

	publishErr := e.bus.PublishPaymentCompleted(ctx, evt)

	// Auto-close runs even when a subscriber failed: the payment stands,
	// so a fully paid order must not stay open.
	if err := e.autoClose(ctx, o); err != nil {
		e.logger.Error("auto-close failed", "order_id", o.ID, "error", err)
		if publishErr == nil {
			publishErr = err
		}
	}

	return p, publishErr
}

// autoClose closes the order once the sum of completed payments covers the
// order total.
func (e *Engine) autoClose(ctx context.Context, o *order.Order) error {
	payments, err := e.store.ListPaymentsByOrder(ctx, o.TenantID, o.ID)
	if err != nil {
		return err
	}

	paid := types.Zero(o.Currency)
	for _, p := range payments {
		if p.Status == payment.StatusCompleted {
			paid = paid.Add(p.Amount)
		}
	}

	if paid.GreaterThanOrEqual(o.Total) {
		o.Status = order.StatusClosed
		o.Touch()
		if err := e.store.UpdateOrder(ctx, o); err != nil {
			return err
		}
		e.logger.Info("order closed", "order_id", o.ID, "paid", paid, "total", o.Total)
	}

	return nil
}

// VoidPayment marks a payment voided. It does not reopen a closed order
// and emits no compensating event. Requires the void-payment permission.
func (e *Engine) VoidPayment(ctx context.Context, scope Scope, paymentID id.PaymentID, reason string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if err := e.authorize(ctx, scope, PermVoidPayment); err != nil {
		return err
	}

	p, err := e.store.GetPayment(ctx, scope.TenantID, paymentID)
	if err != nil {
		return err
	}
	if p.Status == payment.StatusVoided {
		return fmt.Errorf("%w: payment %s", ErrPaymentVoided, p.ID)
	}

	now := time.Now().UTC()
	p.Status = payment.StatusVoided
	p.VoidedAt = &now
	p.VoidReason = reason
	p.Touch()

	if err := e.store.UpdatePayment(ctx, p); err != nil {
		return err
	}

	e.logger.Info("payment voided",
		"payment_id", p.ID,
		"order_id", p.OrderID,
		"reason", reason,
		"actor_id", scope.ActorID,
	)

	return nil
}

// ListPayments lists the payments recorded against an order.
func (e *Engine) ListPayments(ctx context.Context, scope Scope, orderID id.OrderID) ([]*payment.Payment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return e.store.ListPaymentsByOrder(ctx, scope.TenantID, orderID)
}

// CalculateChange returns the change due for a cash tender:
// max(0, paymentAmount − orderTotal).
func CalculateChange(orderTotal, paymentAmount types.Money) types.Money {
	return paymentAmount.Subtract(orderTotal).ClampZero()
}
