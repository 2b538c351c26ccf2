package postgres

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/brigade/cash"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/printing"
	"github.com/xraph/brigade/types"
)

// ==================== Order models ====================

type orderModel struct {
	grove.BaseModel `grove:"table:brigade_orders"`

	ID          string    `grove:"id,pk"`
	TenantID    string    `grove:"tenant_id"`
	SiteID      string    `grove:"site_id"`
	TableID     string    `grove:"table_id"`
	CustomerID  string    `grove:"customer_id"`
	OrderType   string    `grove:"order_type"`
	Status      string    `grove:"status"`
	TotalAmount int64     `grove:"total_amount"`
	Currency    string    `grove:"currency"`
	Version     int64     `grove:"version"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toOrderModel(o *order.Order) *orderModel {
	return &orderModel{
		ID:          o.ID.String(),
		TenantID:    o.TenantID,
		SiteID:      o.SiteID,
		TableID:     o.TableID,
		CustomerID:  o.CustomerID,
		OrderType:   string(o.Type),
		Status:      string(o.Status),
		TotalAmount: o.Total.Amount,
		Currency:    o.Currency,
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func fromOrderModel(m *orderModel) (*order.Order, error) {
	orderID, err := id.ParseOrderID(m.ID)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Versioned:  types.Versioned{Version: m.Version},
		ID:         orderID,
		TenantID:   m.TenantID,
		SiteID:     m.SiteID,
		TableID:    m.TableID,
		CustomerID: m.CustomerID,
		Type:       order.Type(m.OrderType),
		Status:     order.Status(m.Status),
		Total:      types.Money{Amount: m.TotalAmount, Currency: m.Currency},
		Currency:   m.Currency,
	}, nil
}

// ==================== Order line models ====================

type lineModel struct {
	grove.BaseModel `grove:"table:brigade_order_lines"`

	ID         string          `grove:"id,pk"`
	TenantID   string          `grove:"tenant_id"`
	OrderID    string          `grove:"order_id"`
	ItemID     string          `grove:"item_id"`
	ItemName   string          `grove:"item_name"`
	Quantity   int64           `grove:"quantity"`
	UnitPrice  int64           `grove:"unit_price"`
	Currency   string          `grove:"currency"`
	Modifiers  json.RawMessage `grove:"modifiers,type:jsonb"`
	Notes      string          `grove:"notes"`
	LineStatus string          `grove:"status"`
	Version    int64           `grove:"version"`
	CreatedAt  time.Time       `grove:"created_at"`
	UpdatedAt  time.Time       `grove:"updated_at"`
}

func toLineModel(l *order.Line) *lineModel {
	modifiers, _ := json.Marshal(l.Modifiers) //nolint:errcheck // best-effort

	return &lineModel{
		ID:         l.ID.String(),
		TenantID:   l.TenantID,
		OrderID:    l.OrderID.String(),
		ItemID:     l.ItemID,
		ItemName:   l.ItemName,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice.Amount,
		Currency:   l.UnitPrice.Currency,
		Modifiers:  modifiers,
		Notes:      l.Notes,
		LineStatus: string(l.Status),
		Version:    l.Version,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func fromLineModel(m *lineModel) (*order.Line, error) {
	lineID, err := id.ParseOrderLineID(m.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := id.ParseOrderID(m.OrderID)
	if err != nil {
		return nil, err
	}

	var modifiers map[string]string
	if len(m.Modifiers) > 0 && string(m.Modifiers) != "null" {
		_ = json.Unmarshal(m.Modifiers, &modifiers) //nolint:errcheck // best-effort
	}

	return &order.Line{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Versioned: types.Versioned{Version: m.Version},
		ID:        lineID,
		TenantID:  m.TenantID,
		OrderID:   orderID,
		ItemID:    m.ItemID,
		ItemName:  m.ItemName,
		Quantity:  m.Quantity,
		UnitPrice: types.Money{Amount: m.UnitPrice, Currency: m.Currency},
		Modifiers: modifiers,
		Notes:     m.Notes,
		Status:    order.LineStatus(m.LineStatus),
	}, nil
}

// ==================== Discount models ====================

type discountModel struct {
	grove.BaseModel `grove:"table:brigade_discounts"`

	ID           string    `grove:"id,pk"`
	TenantID     string    `grove:"tenant_id"`
	OrderID      string    `grove:"order_id"`
	LineID       string    `grove:"line_id"`
	DiscountType string    `grove:"discount_type"`
	Amount       int64     `grove:"amount"`
	Currency     string    `grove:"currency"`
	Percentage   int64     `grove:"percentage"`
	Reason       string    `grove:"reason"`
	AppliedBy    string    `grove:"applied_by"`
	CreatedAt    time.Time `grove:"created_at"`
	UpdatedAt    time.Time `grove:"updated_at"`
}

func toDiscountModel(d *order.Discount) *discountModel {
	return &discountModel{
		ID:           d.ID.String(),
		TenantID:     d.TenantID,
		OrderID:      d.OrderID.String(),
		LineID:       d.LineID.String(),
		DiscountType: string(d.Type),
		Amount:       d.Amount.Amount,
		Currency:     d.Amount.Currency,
		Percentage:   d.Percentage,
		Reason:       d.Reason,
		AppliedBy:    d.AppliedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func fromDiscountModel(m *discountModel) (*order.Discount, error) {
	discountID, err := id.ParseDiscountID(m.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := id.ParseOrderID(m.OrderID)
	if err != nil {
		return nil, err
	}

	lineID := id.Nil
	if m.LineID != "" {
		lineID, err = id.ParseOrderLineID(m.LineID)
		if err != nil {
			return nil, err
		}
	}

	return &order.Discount{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         discountID,
		TenantID:   m.TenantID,
		OrderID:    orderID,
		LineID:     lineID,
		Type:       order.DiscountType(m.DiscountType),
		Amount:     types.Money{Amount: m.Amount, Currency: m.Currency},
		Percentage: m.Percentage,
		Reason:     m.Reason,
		AppliedBy:  m.AppliedBy,
	}, nil
}

// ==================== Consumption models ====================

type consumptionModel struct {
	grove.BaseModel `grove:"table:brigade_consumptions"`

	ID          string     `grove:"id,pk"`
	TenantID    string     `grove:"tenant_id"`
	LineID      string     `grove:"line_id"`
	Quantity    int64      `grove:"quantity"`
	ConfirmedAt time.Time  `grove:"confirmed_at"`
	VoidedAt    *time.Time `grove:"voided_at"`
	CreatedAt   time.Time  `grove:"created_at"`
	UpdatedAt   time.Time  `grove:"updated_at"`
}

func toConsumptionModel(c *order.Consumption) *consumptionModel {
	return &consumptionModel{
		ID:          c.ID.String(),
		TenantID:    c.TenantID,
		LineID:      c.LineID.String(),
		Quantity:    c.Quantity,
		ConfirmedAt: c.ConfirmedAt,
		VoidedAt:    c.VoidedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromConsumptionModel(m *consumptionModel) (*order.Consumption, error) {
	consumptionID, err := id.ParseConsumptionID(m.ID)
	if err != nil {
		return nil, err
	}
	lineID, err := id.ParseOrderLineID(m.LineID)
	if err != nil {
		return nil, err
	}

	return &order.Consumption{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          consumptionID,
		TenantID:    m.TenantID,
		LineID:      lineID,
		Quantity:    m.Quantity,
		ConfirmedAt: m.ConfirmedAt,
		VoidedAt:    m.VoidedAt,
	}, nil
}

// ==================== Waste entry models ====================

type wasteEntryModel struct {
	grove.BaseModel `grove:"table:brigade_waste_entries"`

	ID        string    `grove:"id,pk"`
	TenantID  string    `grove:"tenant_id"`
	SiteID    string    `grove:"site_id"`
	LineID    string    `grove:"line_id"`
	ItemID    string    `grove:"item_id"`
	Quantity  int64     `grove:"quantity"`
	Reason    string    `grove:"reason"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toWasteEntryModel(w *order.WasteEntry) *wasteEntryModel {
	return &wasteEntryModel{
		ID:        w.ID.String(),
		TenantID:  w.TenantID,
		SiteID:    w.SiteID,
		LineID:    w.LineID.String(),
		ItemID:    w.ItemID,
		Quantity:  w.Quantity,
		Reason:    w.Reason,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:brigade_payments"`

	ID             string     `grove:"id,pk"`
	TenantID       string     `grove:"tenant_id"`
	OrderID        string     `grove:"order_id"`
	Amount         int64      `grove:"amount"`
	Currency       string     `grove:"currency"`
	Method         string     `grove:"method"`
	Status         string     `grove:"status"`
	IdempotencyKey string     `grove:"idempotency_key"`
	ExternalTxnID  string     `grove:"external_txn_id"`
	CompletedAt    *time.Time `grove:"completed_at"`
	VoidedAt       *time.Time `grove:"voided_at"`
	VoidReason     string     `grove:"void_reason"`
	Version        int64      `grove:"version"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:             p.ID.String(),
		TenantID:       p.TenantID,
		OrderID:        p.OrderID.String(),
		Amount:         p.Amount.Amount,
		Currency:       p.Amount.Currency,
		Method:         string(p.Method),
		Status:         string(p.Status),
		IdempotencyKey: p.IdempotencyKey,
		ExternalTxnID:  p.ExternalTxnID,
		CompletedAt:    p.CompletedAt,
		VoidedAt:       p.VoidedAt,
		VoidReason:     p.VoidReason,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := id.ParseOrderID(m.OrderID)
	if err != nil {
		return nil, err
	}

	return &payment.Payment{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Versioned:      types.Versioned{Version: m.Version},
		ID:             paymentID,
		TenantID:       m.TenantID,
		OrderID:        orderID,
		Amount:         types.Money{Amount: m.Amount, Currency: m.Currency},
		Method:         payment.Method(m.Method),
		Status:         payment.Status(m.Status),
		IdempotencyKey: m.IdempotencyKey,
		ExternalTxnID:  m.ExternalTxnID,
		CompletedAt:    m.CompletedAt,
		VoidedAt:       m.VoidedAt,
		VoidReason:     m.VoidReason,
	}, nil
}

// ==================== Printer models ====================

type printerModel struct {
	grove.BaseModel `grove:"table:brigade_printers"`

	ID             string    `grove:"id,pk"`
	TenantID       string    `grove:"tenant_id"`
	SiteID         string    `grove:"site_id"`
	Name           string    `grove:"name"`
	Zone           string    `grove:"zone"`
	Status         string    `grove:"status"`
	RedirectTarget string    `grove:"redirect_target"`
	CreatedAt      time.Time `grove:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"`
}

func toPrinterModel(p *printing.Printer) *printerModel {
	return &printerModel{
		ID:             p.ID.String(),
		TenantID:       p.TenantID,
		SiteID:         p.SiteID,
		Name:           p.Name,
		Zone:           p.Zone,
		Status:         string(p.Status),
		RedirectTarget: p.RedirectTarget.String(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromPrinterModel(m *printerModel) (*printing.Printer, error) {
	printerID, err := id.ParsePrinterID(m.ID)
	if err != nil {
		return nil, err
	}

	target := id.Nil
	if m.RedirectTarget != "" {
		target, err = id.ParsePrinterID(m.RedirectTarget)
		if err != nil {
			return nil, err
		}
	}

	return &printing.Printer{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             printerID,
		TenantID:       m.TenantID,
		SiteID:         m.SiteID,
		Name:           m.Name,
		Zone:           m.Zone,
		Status:         printing.PrinterStatus(m.Status),
		RedirectTarget: target,
	}, nil
}

// ==================== Print job models ====================

type printJobModel struct {
	grove.BaseModel `grove:"table:brigade_print_jobs"`

	ID        string    `grove:"id,pk"`
	TenantID  string    `grove:"tenant_id"`
	OrderID   string    `grove:"order_id"`
	LineID    string    `grove:"line_id"`
	PrinterID string    `grove:"printer_id"`
	Content   string    `grove:"content"`
	Status    string    `grove:"status"`
	DedupeKey string    `grove:"dedupe_key"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toPrintJobModel(j *printing.Job) *printJobModel {
	return &printJobModel{
		ID:        j.ID.String(),
		TenantID:  j.TenantID,
		OrderID:   j.OrderID.String(),
		LineID:    j.LineID.String(),
		PrinterID: j.PrinterID.String(),
		Content:   j.Content,
		Status:    string(j.Status),
		DedupeKey: j.DedupeKey,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func fromPrintJobModel(m *printJobModel) (*printing.Job, error) {
	jobID, err := id.ParsePrintJobID(m.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := id.ParseOrderID(m.OrderID)
	if err != nil {
		return nil, err
	}
	printerID, err := id.ParsePrinterID(m.PrinterID)
	if err != nil {
		return nil, err
	}

	lineID := id.Nil
	if m.LineID != "" {
		lineID, err = id.ParseOrderLineID(m.LineID)
		if err != nil {
			return nil, err
		}
	}

	return &printing.Job{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        jobID,
		TenantID:  m.TenantID,
		OrderID:   orderID,
		LineID:    lineID,
		PrinterID: printerID,
		Content:   m.Content,
		Status:    printing.JobStatus(m.Status),
		DedupeKey: m.DedupeKey,
	}, nil
}

// ==================== Cash register models ====================

type cashRegisterModel struct {
	grove.BaseModel `grove:"table:brigade_cash_registers"`

	ID        string    `grove:"id,pk"`
	TenantID  string    `grove:"tenant_id"`
	SiteID    string    `grove:"site_id"`
	Name      string    `grove:"name"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toCashRegisterModel(r *cash.Register) *cashRegisterModel {
	return &cashRegisterModel{
		ID:        r.ID.String(),
		TenantID:  r.TenantID,
		SiteID:    r.SiteID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromCashRegisterModel(m *cashRegisterModel) (*cash.Register, error) {
	registerID, err := id.ParseCashRegisterID(m.ID)
	if err != nil {
		return nil, err
	}

	return &cash.Register{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       registerID,
		TenantID: m.TenantID,
		SiteID:   m.SiteID,
		Name:     m.Name,
	}, nil
}

// ==================== Cash session models ====================

type cashSessionModel struct {
	grove.BaseModel `grove:"table:brigade_cash_sessions"`

	ID             string     `grove:"id,pk"`
	TenantID       string     `grove:"tenant_id"`
	RegisterID     string     `grove:"register_id"`
	Status         string     `grove:"status"`
	OpenedBy       string     `grove:"opened_by"`
	OpeningAmount  int64      `grove:"opening_amount"`
	ExpectedAmount int64      `grove:"expected_amount"`
	CountedAmount  int64      `grove:"counted_amount"`
	Difference     int64      `grove:"difference"`
	Currency       string     `grove:"currency"`
	ClosedBy       string     `grove:"closed_by"`
	ClosedAt       *time.Time `grove:"closed_at"`
	Version        int64      `grove:"version"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toCashSessionModel(s *cash.Session) *cashSessionModel {
	return &cashSessionModel{
		ID:             s.ID.String(),
		TenantID:       s.TenantID,
		RegisterID:     s.RegisterID.String(),
		Status:         string(s.Status),
		OpenedBy:       s.OpenedBy,
		OpeningAmount:  s.OpeningAmount.Amount,
		ExpectedAmount: s.ExpectedAmount.Amount,
		CountedAmount:  s.CountedAmount.Amount,
		Difference:     s.Difference.Amount,
		Currency:       s.OpeningAmount.Currency,
		ClosedBy:       s.ClosedBy,
		ClosedAt:       s.ClosedAt,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func fromCashSessionModel(m *cashSessionModel) (*cash.Session, error) {
	sessionID, err := id.ParseCashSessionID(m.ID)
	if err != nil {
		return nil, err
	}
	registerID, err := id.ParseCashRegisterID(m.RegisterID)
	if err != nil {
		return nil, err
	}

	return &cash.Session{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Versioned:      types.Versioned{Version: m.Version},
		ID:             sessionID,
		TenantID:       m.TenantID,
		RegisterID:     registerID,
		Status:         cash.SessionStatus(m.Status),
		OpenedBy:       m.OpenedBy,
		OpeningAmount:  types.Money{Amount: m.OpeningAmount, Currency: m.Currency},
		ExpectedAmount: types.Money{Amount: m.ExpectedAmount, Currency: m.Currency},
		CountedAmount:  types.Money{Amount: m.CountedAmount, Currency: m.Currency},
		Difference:     types.Money{Amount: m.Difference, Currency: m.Currency},
		ClosedBy:       m.ClosedBy,
		ClosedAt:       m.ClosedAt,
	}, nil
}

// ==================== Cash movement models ====================

type cashMovementModel struct {
	grove.BaseModel `grove:"table:brigade_cash_movements"`

	ID           string    `grove:"id,pk"`
	TenantID     string    `grove:"tenant_id"`
	SessionID    string    `grove:"session_id"`
	MovementType string    `grove:"movement_type"`
	Amount       int64     `grove:"amount"`
	Currency     string    `grove:"currency"`
	OrderID      string    `grove:"order_id"`
	PaymentID    string    `grove:"payment_id"`
	Reason       string    `grove:"reason"`
	ActorID      string    `grove:"actor_id"`
	CreatedAt    time.Time `grove:"created_at"`
	UpdatedAt    time.Time `grove:"updated_at"`
}

func toCashMovementModel(m *cash.Movement) *cashMovementModel {
	return &cashMovementModel{
		ID:           m.ID.String(),
		TenantID:     m.TenantID,
		SessionID:    m.SessionID.String(),
		MovementType: string(m.Type),
		Amount:       m.Amount.Amount,
		Currency:     m.Amount.Currency,
		OrderID:      m.OrderID.String(),
		PaymentID:    m.PaymentID.String(),
		Reason:       m.Reason,
		ActorID:      m.ActorID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromCashMovementModel(m *cashMovementModel) (*cash.Movement, error) {
	movementID, err := id.ParseCashMovementID(m.ID)
	if err != nil {
		return nil, err
	}
	sessionID, err := id.ParseCashSessionID(m.SessionID)
	if err != nil {
		return nil, err
	}

	orderID := id.Nil
	if m.OrderID != "" {
		orderID, err = id.ParseOrderID(m.OrderID)
		if err != nil {
			return nil, err
		}
	}
	paymentID := id.Nil
	if m.PaymentID != "" {
		paymentID, err = id.ParsePaymentID(m.PaymentID)
		if err != nil {
			return nil, err
		}
	}

	return &cash.Movement{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        movementID,
		TenantID:  m.TenantID,
		SessionID: sessionID,
		Type:      cash.MovementType(m.MovementType),
		Amount:    types.Money{Amount: m.Amount, Currency: m.Currency},
		OrderID:   orderID,
		PaymentID: paymentID,
		Reason:    m.Reason,
		ActorID:   m.ActorID,
	}, nil
}
