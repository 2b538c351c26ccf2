package brigade

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/types"
)

// CreateOrderRequest carries the inputs for opening a new order.
type CreateOrderRequest struct {
	SiteID     string
	Type       order.Type
	TableID    string
	CustomerID string
	Currency   string
}

// CreateOrder opens a new order with a zero total.
func (e *Engine) CreateOrder(ctx context.Context, scope Scope, req CreateOrderRequest) (*order.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if req.SiteID == "" {
		return nil, ValidationError{Field: "site_id", Message: "is required"}
	}
	if !req.Type.Valid() {
		return nil, ValidationError{Field: "type", Message: fmt.Sprintf("unknown order type %q", req.Type)}
	}
	if req.Currency == "" {
		return nil, ValidationError{Field: "currency", Message: "is required"}
	}

	o := &order.Order{
		Entity:     types.NewEntity(),
		Versioned:  types.NewVersioned(),
		ID:         id.NewOrderID(),
		TenantID:   scope.TenantID,
		SiteID:     req.SiteID,
		TableID:    req.TableID,
		CustomerID: req.CustomerID,
		Type:       req.Type,
		Status:     order.StatusOpen,
		Total:      types.Zero(req.Currency),
		Currency:   req.Currency,
	}

	if err := e.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	e.logger.Info("order created",
		"order_id", o.ID,
		"tenant_id", o.TenantID,
		"site_id", o.SiteID,
		"type", o.Type,
	)

	return o, nil
}

// GetOrder fetches a single order within the scope's tenant.
func (e *Engine) GetOrder(ctx context.Context, scope Scope, orderID id.OrderID) (*order.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return e.store.GetOrder(ctx, scope.TenantID, orderID)
}

// ListOrders lists orders within the scope's tenant.
func (e *Engine) ListOrders(ctx context.Context, scope Scope, opts order.ListOpts) ([]*order.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return e.store.ListOrders(ctx, scope.TenantID, opts)
}

// ListLines lists the lines of an order.
func (e *Engine) ListLines(ctx context.Context, scope Scope, orderID id.OrderID) ([]*order.Line, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return e.store.ListLines(ctx, scope.TenantID, orderID)
}

// AddLineRequest carries the inputs for adding a line to an open order.
type AddLineRequest struct {
	OrderID   id.OrderID
	ItemID    string
	Quantity  int64
	Modifiers map[string]string
	Notes     string
}

// AddLine adds a pending line to an open order, snapshotting the item's
// current catalog price, and recomputes the order total.
func (e *Engine) AddLine(ctx context.Context, scope Scope, req AddLineRequest) (*order.Line, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if req.ItemID == "" {
		return nil, ValidationError{Field: "item_id", Message: "is required"}
	}
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", ErrItemUnavailable)
	}

	o, err := e.store.GetOrder(ctx, scope.TenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusOpen {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotOpen, o.ID, o.Status)
	}

	item, err := e.catalog.ResolveItem(ctx, scope.TenantID, o.SiteID, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrItemUnavailable, req.ItemID, err)
	}
	if item == nil || !item.Available {
		return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, req.ItemID)
	}
	if item.UnitPrice.Currency != o.Currency {
		return nil, fmt.Errorf("%w: item %s priced in %s, order in %s",
			ErrCurrencyMismatch, req.ItemID, item.UnitPrice.Currency, o.Currency)
	}

	l := &order.Line{
		Entity:    types.NewEntity(),
		Versioned: types.NewVersioned(),
		ID:        id.NewOrderLineID(),
		TenantID:  scope.TenantID,
		OrderID:   o.ID,
		ItemID:    item.ItemID,
		ItemName:  item.Name,
		Quantity:  req.Quantity,
		UnitPrice: item.UnitPrice,
		Modifiers: req.Modifiers,
		Notes:     req.Notes,
		Status:    order.LineStatusPending,
	}

	if err := e.store.CreateLine(ctx, l); err != nil {
		return nil, err
	}

	// A conflict on the order write rejects the whole operation. The
	// line must not survive it, or a retry double-adds the item.
	if err := e.recomputeTotal(ctx, o); err != nil {
		if delErr := e.store.DeleteLine(ctx, scope.TenantID, l.ID); delErr != nil {
			e.logger.Warn("failed to remove line after rejected total write",
				"line_id", l.ID,
				"order_id", o.ID,
				"error", delErr,
			)
		}
		return nil, err
	}

	return l, nil
}

// UpdateLineRequest carries the mutable fields of a pending line.
type UpdateLineRequest struct {
	LineID    id.OrderLineID
	Quantity  int64
	Modifiers map[string]string
	Notes     string
}

// UpdateLine mutates a pending line and recomputes the order total.
// Confirmed and voided lines are immutable.
func (e *Engine) UpdateLine(ctx context.Context, scope Scope, req UpdateLineRequest) (*order.Line, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, ValidationError{Field: "quantity", Message: "must be positive"}
	}

	l, err := e.store.GetLine(ctx, scope.TenantID, req.LineID)
	if err != nil {
		return nil, err
	}
	if l.Status != order.LineStatusPending {
		return nil, fmt.Errorf("%w: line %s is %s", ErrLineNotModifiable, l.ID, l.Status)
	}

	prevQuantity, prevModifiers, prevNotes := l.Quantity, l.Modifiers, l.Notes

	l.Quantity = req.Quantity
	l.Modifiers = req.Modifiers
	l.Notes = req.Notes
	l.Touch()

	if err := e.store.UpdateLine(ctx, l); err != nil {
		return nil, err
	}

	o, err := e.store.GetOrder(ctx, scope.TenantID, l.OrderID)
	if err != nil {
		return nil, err
	}
	// A conflict on the order write rejects the whole operation; put the
	// line back the way it was.
	if err := e.recomputeTotal(ctx, o); err != nil {
		l.Quantity = prevQuantity
		l.Modifiers = prevModifiers
		l.Notes = prevNotes
		l.Touch()
		if revertErr := e.store.UpdateLine(ctx, l); revertErr != nil {
			e.logger.Warn("failed to revert line after rejected total write",
				"line_id", l.ID,
				"order_id", o.ID,
				"error", revertErr,
			)
		}
		return nil, err
	}

	return l, nil
}

// VoidLine voids a line and recomputes the order total. Voiding a
// confirmed line requires the elevated void-after-subtotal permission and
// voids the line's consumption records. With recordWaste set, a waste
// entry is written for the lost product.
func (e *Engine) VoidLine(ctx context.Context, scope Scope, lineID id.OrderLineID, reason string, recordWaste bool) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	l, err := e.store.GetLine(ctx, scope.TenantID, lineID)
	if err != nil {
		return err
	}
	if l.Status == order.LineStatusVoided {
		return fmt.Errorf("%w: line %s", ErrLineVoided, l.ID)
	}

	o, err := e.store.GetOrder(ctx, scope.TenantID, l.OrderID)
	if err != nil {
		return err
	}

	wasConfirmed := l.Status == order.LineStatusConfirmed
	if wasConfirmed {
		if err := e.authorize(ctx, scope, PermVoidAfterSubtotal); err != nil {
			return err
		}
	}

	// Version-checked writes come first: a conflict on either rejects
	// the void with nothing else persisted. Consumption voiding and the
	// waste entry follow only once the void has taken effect.
	prevStatus := l.Status
	l.Status = order.LineStatusVoided
	l.Touch()
	if err := e.store.UpdateLine(ctx, l); err != nil {
		return err
	}

	if err := e.recomputeTotal(ctx, o); err != nil {
		l.Status = prevStatus
		l.Touch()
		if revertErr := e.store.UpdateLine(ctx, l); revertErr != nil {
			e.logger.Warn("failed to revert line after rejected total write",
				"line_id", l.ID,
				"order_id", o.ID,
				"error", revertErr,
			)
		}
		return err
	}

	if wasConfirmed {
		if err := e.store.VoidConsumptionsByLine(ctx, scope.TenantID, l.ID); err != nil {
			return err
		}
	}

	if recordWaste {
		w := &order.WasteEntry{
			Entity:   types.NewEntity(),
			ID:       id.NewWasteEntryID(),
			TenantID: scope.TenantID,
			SiteID:   o.SiteID,
			LineID:   l.ID,
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			Reason:   reason,
		}
		if err := e.store.CreateWasteEntry(ctx, w); err != nil {
			return err
		}
	}

	e.logger.Info("order line voided",
		"line_id", l.ID,
		"order_id", o.ID,
		"reason", reason,
		"waste_recorded", recordWaste,
	)

	return nil
}

// DiscountRequest carries the inputs for applying a discount.
type DiscountRequest struct {
	OrderID    id.OrderID
	LineID     id.OrderLineID // zero value targets the whole order
	Type       order.DiscountType
	Amount     types.Money // fixed_amount only
	Percentage int64       // percentage only, 1..100
	Reason     string
}

// ApplyDiscount applies an order-level or line-level discount and
// recomputes the order total. Requires the apply-discount permission.
func (e *Engine) ApplyDiscount(ctx context.Context, scope Scope, req DiscountRequest) (*order.Discount, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := e.authorize(ctx, scope, PermApplyDiscount); err != nil {
		return nil, err
	}

	o, err := e.store.GetOrder(ctx, scope.TenantID, req.OrderID)
	if err != nil {
		return nil, err
	}

	switch req.Type {
	case order.DiscountPercentage:
		if req.Percentage <= 0 || req.Percentage > 100 {
			return nil, fmt.Errorf("%w: percentage must be in 1..100, got %d", ErrInvalidDiscount, req.Percentage)
		}
	case order.DiscountFixedAmount:
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidDiscount)
		}
		if req.Amount.Currency != o.Currency {
			return nil, fmt.Errorf("%w: discount in %s, order in %s",
				ErrCurrencyMismatch, req.Amount.Currency, o.Currency)
		}
	default:
		return nil, fmt.Errorf("%w: unknown discount type %q", ErrInvalidDiscount, req.Type)
	}

	if !req.LineID.IsNil() {
		l, err := e.store.GetLine(ctx, scope.TenantID, req.LineID)
		if err != nil {
			return nil, err
		}
		if l.OrderID != o.ID {
			return nil, fmt.Errorf("%w: line %s does not belong to order %s", ErrInvalidDiscount, l.ID, o.ID)
		}
		if l.Status == order.LineStatusVoided {
			return nil, fmt.Errorf("%w: line %s is voided", ErrInvalidDiscount, l.ID)
		}
	}

	d := &order.Discount{
		Entity:     types.NewEntity(),
		ID:         id.NewDiscountID(),
		TenantID:   scope.TenantID,
		OrderID:    o.ID,
		LineID:     req.LineID,
		Type:       req.Type,
		Amount:     req.Amount,
		Percentage: req.Percentage,
		Reason:     req.Reason,
		AppliedBy:  scope.ActorID,
	}

	if err := e.store.CreateDiscount(ctx, d); err != nil {
		return nil, err
	}

	// A conflict on the order write rejects the whole operation; the
	// discount must not linger to be folded into a later recompute.
	if err := e.recomputeTotal(ctx, o); err != nil {
		if delErr := e.store.DeleteDiscount(ctx, scope.TenantID, d.ID); delErr != nil {
			e.logger.Warn("failed to remove discount after rejected total write",
				"discount_id", d.ID,
				"order_id", o.ID,
				"error", delErr,
			)
		}
		return nil, err
	}

	return d, nil
}

// ConfirmOrder transitions every pending line to confirmed, records one
// consumption per confirmed line, moves the order to confirmed, and
// publishes OrderConfirmed synchronously. A subscriber failure aborts the
// confirmation: the status changes are unwound before the error is
// returned, so a client is never told "confirmed" while ticket creation
// failed.
func (e *Engine) ConfirmOrder(ctx context.Context, scope Scope, orderID id.OrderID) (*order.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	o, err := e.store.GetOrder(ctx, scope.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusOpen {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotOpen, o.ID, o.Status)
	}

	lines, err := e.store.ListLines(ctx, scope.TenantID, o.ID)
	if err != nil {
		return nil, err
	}

	var pending []*order.Line
	for _, l := range lines {
		if l.Status == order.LineStatusPending {
			pending = append(pending, l)
		}
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("%w: order %s", ErrNoPendingLines, o.ID)
	}

	now := time.Now().UTC()
	var confirmed []*order.Line

	unwind := func() {
		for _, l := range confirmed {
			l.Status = order.LineStatusPending
			l.Touch()
			if uerr := e.store.UpdateLine(ctx, l); uerr != nil {
				e.logger.Error("confirmation unwind: line revert failed", "line_id", l.ID, "error", uerr)
			}
			if uerr := e.store.VoidConsumptionsByLine(ctx, scope.TenantID, l.ID); uerr != nil {
				e.logger.Error("confirmation unwind: consumption void failed", "line_id", l.ID, "error", uerr)
			}
		}
	}

	for _, l := range pending {
		l.Status = order.LineStatusConfirmed
		l.Touch()
		if err := e.store.UpdateLine(ctx, l); err != nil {
			unwind()
			return nil, err
		}

		c := &order.Consumption{
			Entity:      types.NewEntity(),
			ID:          id.NewConsumptionID(),
			TenantID:    scope.TenantID,
			LineID:      l.ID,
			Quantity:    l.Quantity,
			ConfirmedAt: now,
		}
		if err := e.store.CreateConsumption(ctx, c); err != nil {
			l.Status = order.LineStatusPending
			l.Touch()
			if uerr := e.store.UpdateLine(ctx, l); uerr != nil {
				e.logger.Error("confirmation unwind: line revert failed", "line_id", l.ID, "error", uerr)
			}
			unwind()
			return nil, err
		}
		confirmed = append(confirmed, l)
	}

	o.Status = order.StatusConfirmed
	o.Touch()
	if err := e.store.UpdateOrder(ctx, o); err != nil {
		unwind()
		return nil, err
	}

	snapshots := make([]event.ConfirmedLine, 0, len(confirmed))
	for _, l := range confirmed {
		snapshots = append(snapshots, event.ConfirmedLine{
			LineID:    l.ID,
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			Quantity:  l.Quantity,
			Modifiers: flattenModifiers(l.Modifiers),
			Notes:     l.Notes,
		})
	}

	evt, err := event.NewOrderConfirmed(scope.TenantID, o.SiteID, o.ID, snapshots)
	if err != nil {
		e.revertConfirmation(ctx, o, unwind)
		return nil, err
	}
	evt.TableID = o.TableID
	evt.OrderType = string(o.Type)
	evt.OccurredAt = now

	if err := e.bus.PublishOrderConfirmed(ctx, evt); err != nil {
		e.revertConfirmation(ctx, o, unwind)
		return nil, err
	}

	e.logger.Info("order confirmed",
		"order_id", o.ID,
		"tenant_id", o.TenantID,
		"lines", len(confirmed),
	)

	return o, nil
}

// revertConfirmation rolls the order back to open and undoes line
// confirmations after a failed publish.
func (e *Engine) revertConfirmation(ctx context.Context, o *order.Order, unwind func()) {
	o.Status = order.StatusOpen
	o.Touch()
	if err := e.store.UpdateOrder(ctx, o); err != nil {
		e.logger.Error("confirmation unwind: order revert failed", "order_id", o.ID, "error", err)
	}
	unwind()
}

// recomputeTotal recalculates and persists the order total from scratch:
// non-voided line totals, minus order-level discounts computed against the
// pre-discount line sum, minus line-level discounts, floored at zero.
func (e *Engine) recomputeTotal(ctx context.Context, o *order.Order) error {
	lines, err := e.store.ListLines(ctx, o.TenantID, o.ID)
	if err != nil {
		return err
	}
	discounts, err := e.store.ListDiscounts(ctx, o.TenantID, o.ID)
	if err != nil {
		return err
	}

	byLine := make(map[id.OrderLineID]*order.Line, len(lines))
	lineSum := types.Zero(o.Currency)
	for _, l := range lines {
		byLine[l.ID] = l
		if l.Status == order.LineStatusVoided {
			continue
		}
		lineSum = lineSum.Add(l.Total())
	}

	total := lineSum
	for _, d := range discounts {
		if !d.LineID.IsNil() {
			l, ok := byLine[d.LineID]
			if !ok || l.Status == order.LineStatusVoided {
				continue
			}
			switch d.Type {
			case order.DiscountPercentage:
				total = total.Subtract(l.Total().Percent(d.Percentage))
			case order.DiscountFixedAmount:
				total = total.Subtract(d.Amount)
			}
			continue
		}

		switch d.Type {
		case order.DiscountPercentage:
			total = total.Subtract(lineSum.Percent(d.Percentage))
		case order.DiscountFixedAmount:
			total = total.Subtract(d.Amount)
		}
	}

	o.Total = total.ClampZero()
	o.Touch()

	return e.store.UpdateOrder(ctx, o)
}

// flattenModifiers renders a line's modifier bag as sorted "key: value"
// strings for ticket content.
func flattenModifiers(mods map[string]string) []string {
	if len(mods) == 0 {
		return nil
	}
	keys := make([]string, 0, len(mods))
	for k := range mods {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if mods[k] == "" {
			out = append(out, k)
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", k, mods[k]))
	}
	return out
}
