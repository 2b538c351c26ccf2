// Package postgres implements the Brigade store on PostgreSQL via Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/brigade"
	"github.com/xraph/brigade/cash"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/printing"
	brigadestore "github.com/xraph/brigade/store"
)

// compile-time interface check
var _ brigadestore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("brigade/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("brigade/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Order Store ====================

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	m := toOrderModel(o)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetOrder(ctx context.Context, tenantID string, orderID id.OrderID) (*order.Order, error) {
	m := new(orderModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", orderID.String()).
		Where("tenant_id = $2", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrOrderNotFound
		}
		return nil, err
	}
	return fromOrderModel(m)
}

func (s *Store) ListOrders(ctx context.Context, tenantID string, opts order.ListOpts) ([]*order.Order, error) {
	var models []orderModel
	q := s.pg.NewSelect(&models).Where("tenant_id = $1", tenantID)

	argIdx := 1
	if opts.SiteID != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("site_id = $%d", argIdx), opts.SiteID)
	}
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*order.Order, len(models))
	for i := range models {
		o, err := fromOrderModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = o
	}
	return result, nil
}

// UpdateOrder performs the explicit compare-and-increment write: the row is
// updated only where the stored version equals the version the caller read,
// and zero affected rows distinguishes a missing order from a stale one.
func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	res, err := s.pg.NewUpdate((*orderModel)(nil)).
		Set("status = $1", string(o.Status)).
		Set("total_amount = $2", o.Total.Amount).
		Set("version = $3", o.Version+1).
		Set("updated_at = $4", now()).
		Where("id = $5", o.ID.String()).
		Where("tenant_id = $6", o.TenantID).
		Where("version = $7", o.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := s.GetOrder(ctx, o.TenantID, o.ID); getErr != nil {
			return getErr
		}
		return brigade.ErrVersionConflict
	}
	o.Bump()
	return nil
}

// ==================== Order line Store ====================

func (s *Store) CreateLine(ctx context.Context, l *order.Line) error {
	m := toLineModel(l)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetLine(ctx context.Context, tenantID string, lineID id.OrderLineID) (*order.Line, error) {
	m := new(lineModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", lineID.String()).
		Where("tenant_id = $2", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrLineNotFound
		}
		return nil, err
	}
	return fromLineModel(m)
}

func (s *Store) ListLines(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Line, error) {
	var models []lineModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("order_id = $2", orderID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*order.Line, len(models))
	for i := range models {
		l, err := fromLineModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = l
	}
	return result, nil
}

func (s *Store) UpdateLine(ctx context.Context, l *order.Line) error {
	m := toLineModel(l)
	res, err := s.pg.NewUpdate((*lineModel)(nil)).
		Set("quantity = $1", m.Quantity).
		Set("modifiers = $2", m.Modifiers).
		Set("notes = $3", m.Notes).
		Set("status = $4", m.LineStatus).
		Set("version = $5", l.Version+1).
		Set("updated_at = $6", now()).
		Where("id = $7", l.ID.String()).
		Where("tenant_id = $8", l.TenantID).
		Where("version = $9", l.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := s.GetLine(ctx, l.TenantID, l.ID); getErr != nil {
			return getErr
		}
		return brigade.ErrVersionConflict
	}
	l.Bump()
	return nil
}

func (s *Store) DeleteLine(ctx context.Context, tenantID string, lineID id.OrderLineID) error {
	res, err := s.pg.NewDelete((*lineModel)(nil)).
		Where("id = $1", lineID.String()).
		Where("tenant_id = $2", tenantID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return brigade.ErrLineNotFound
	}
	return nil
}

// ==================== Discount Store ====================

func (s *Store) CreateDiscount(ctx context.Context, d *order.Discount) error {
	m := toDiscountModel(d)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListDiscounts(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Discount, error) {
	var models []discountModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("order_id = $2", orderID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*order.Discount, len(models))
	for i := range models {
		d, err := fromDiscountModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = d
	}
	return result, nil
}

func (s *Store) DeleteDiscount(ctx context.Context, tenantID string, discountID id.DiscountID) error {
	res, err := s.pg.NewDelete((*discountModel)(nil)).
		Where("id = $1", discountID.String()).
		Where("tenant_id = $2", tenantID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return brigade.ErrDiscountNotFound
	}
	return nil
}

// ==================== Consumption Store ====================

func (s *Store) CreateConsumption(ctx context.Context, c *order.Consumption) error {
	m := toConsumptionModel(c)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) ([]*order.Consumption, error) {
	var models []consumptionModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("line_id = $2", lineID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*order.Consumption, len(models))
	for i := range models {
		c, err := fromConsumptionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) VoidConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) error {
	t := now()
	_, err := s.pg.NewUpdate((*consumptionModel)(nil)).
		Set("voided_at = $1", t).
		Set("updated_at = $2", t).
		Where("tenant_id = $3", tenantID).
		Where("line_id = $4", lineID.String()).
		Where("voided_at IS NULL").
		Exec(ctx)
	return err
}

// ==================== Waste Store ====================

func (s *Store) CreateWasteEntry(ctx context.Context, w *order.WasteEntry) error {
	m := toWasteEntryModel(w)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPayment(ctx context.Context, tenantID string, paymentID id.PaymentID) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", paymentID.String()).
		Where("tenant_id = $2", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

func (s *Store) GetPaymentByIdempotencyKey(ctx context.Context, tenantID, key string) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.pg.NewSelect(m).
		Where("tenant_id = $1", tenantID).
		Where("idempotency_key = $2", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

func (s *Store) ListPaymentsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*payment.Payment, error) {
	var models []paymentModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("order_id = $2", orderID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*payment.Payment, len(models))
	for i := range models {
		p, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) UpdatePayment(ctx context.Context, p *payment.Payment) error {
	res, err := s.pg.NewUpdate((*paymentModel)(nil)).
		Set("status = $1", string(p.Status)).
		Set("voided_at = $2", p.VoidedAt).
		Set("void_reason = $3", p.VoidReason).
		Set("version = $4", p.Version+1).
		Set("updated_at = $5", now()).
		Where("id = $6", p.ID.String()).
		Where("tenant_id = $7", p.TenantID).
		Where("version = $8", p.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := s.GetPayment(ctx, p.TenantID, p.ID); getErr != nil {
			return getErr
		}
		return brigade.ErrVersionConflict
	}
	p.Bump()
	return nil
}

// ==================== Printer Store ====================

func (s *Store) CreatePrinter(ctx context.Context, p *printing.Printer) error {
	m := toPrinterModel(p)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPrinter(ctx context.Context, tenantID string, printerID id.PrinterID) (*printing.Printer, error) {
	m := new(printerModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", printerID.String()).
		Where("tenant_id = $2", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrPrinterNotFound
		}
		return nil, err
	}
	return fromPrinterModel(m)
}

func (s *Store) ListPrinters(ctx context.Context, tenantID, siteID string) ([]*printing.Printer, error) {
	var models []printerModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("site_id = $2", siteID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*printing.Printer, len(models))
	for i := range models {
		p, err := fromPrinterModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) UpdatePrinter(ctx context.Context, p *printing.Printer) error {
	res, err := s.pg.NewUpdate((*printerModel)(nil)).
		Set("name = $1", p.Name).
		Set("zone = $2", p.Zone).
		Set("status = $3", string(p.Status)).
		Set("redirect_target = $4", p.RedirectTarget.String()).
		Set("updated_at = $5", now()).
		Where("id = $6", p.ID.String()).
		Where("tenant_id = $7", p.TenantID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return brigade.ErrPrinterNotFound
	}
	return nil
}

// ==================== Print job Store ====================

func (s *Store) CreatePrintJob(ctx context.Context, j *printing.Job) error {
	m := toPrintJobModel(j)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPrintJob(ctx context.Context, tenantID string, jobID id.PrintJobID) (*printing.Job, error) {
	m := new(printJobModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", jobID.String()).
		Where("tenant_id = $2", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrPrintJobNotFound
		}
		return nil, err
	}
	return fromPrintJobModel(m)
}

func (s *Store) GetPrintJobByDedupeKey(ctx context.Context, tenantID, key string) (*printing.Job, error) {
	m := new(printJobModel)
	err := s.pg.NewSelect(m).
		Where("tenant_id = $1", tenantID).
		Where("dedupe_key = $2", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrPrintJobNotFound
		}
		return nil, err
	}
	return fromPrintJobModel(m)
}

func (s *Store) ListPrintJobsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*printing.Job, error) {
	var models []printJobModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("order_id = $2", orderID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*printing.Job, len(models))
	for i := range models {
		j, err := fromPrintJobModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = j
	}
	return result, nil
}

func (s *Store) UpdatePrintJob(ctx context.Context, j *printing.Job) error {
	res, err := s.pg.NewUpdate((*printJobModel)(nil)).
		Set("status = $1", string(j.Status)).
		Set("updated_at = $2", now()).
		Where("id = $3", j.ID.String()).
		Where("tenant_id = $4", j.TenantID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return brigade.ErrPrintJobNotFound
	}
	return nil
}

// ==================== Cash register Store ====================

func (s *Store) CreateCashRegister(ctx context.Context, r *cash.Register) error {
	m := toCashRegisterModel(r)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCashRegister(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Register, error) {
	m := new(cashRegisterModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", registerID.String()).
		Where("tenant_id = $2", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrRegisterNotFound
		}
		return nil, err
	}
	return fromCashRegisterModel(m)
}

func (s *Store) ListCashRegisters(ctx context.Context, tenantID, siteID string) ([]*cash.Register, error) {
	var models []cashRegisterModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("site_id = $2", siteID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*cash.Register, len(models))
	for i := range models {
		r, err := fromCashRegisterModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ==================== Cash session Store ====================

func (s *Store) CreateCashSession(ctx context.Context, sess *cash.Session) error {
	m := toCashSessionModel(sess)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCashSession(ctx context.Context, tenantID string, sessionID id.CashSessionID) (*cash.Session, error) {
	m := new(cashSessionModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", sessionID.String()).
		Where("tenant_id = $2", tenantID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrSessionNotFound
		}
		return nil, err
	}
	return fromCashSessionModel(m)
}

func (s *Store) GetOpenCashSession(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Session, error) {
	m := new(cashSessionModel)
	err := s.pg.NewSelect(m).
		Where("tenant_id = $1", tenantID).
		Where("register_id = $2", registerID.String()).
		Where("status = $3", string(cash.SessionOpen)).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, brigade.ErrSessionNotFound
		}
		return nil, err
	}
	return fromCashSessionModel(m)
}

func (s *Store) UpdateCashSession(ctx context.Context, sess *cash.Session) error {
	res, err := s.pg.NewUpdate((*cashSessionModel)(nil)).
		Set("status = $1", string(sess.Status)).
		Set("expected_amount = $2", sess.ExpectedAmount.Amount).
		Set("counted_amount = $3", sess.CountedAmount.Amount).
		Set("difference = $4", sess.Difference.Amount).
		Set("closed_by = $5", sess.ClosedBy).
		Set("closed_at = $6", sess.ClosedAt).
		Set("version = $7", sess.Version+1).
		Set("updated_at = $8", now()).
		Where("id = $9", sess.ID.String()).
		Where("tenant_id = $10", sess.TenantID).
		Where("version = $11", sess.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := s.GetCashSession(ctx, sess.TenantID, sess.ID); getErr != nil {
			return getErr
		}
		return brigade.ErrVersionConflict
	}
	sess.Bump()
	return nil
}

// ==================== Cash movement Store ====================

func (s *Store) CreateCashMovement(ctx context.Context, m *cash.Movement) error {
	model := toCashMovementModel(m)
	_, err := s.pg.NewInsert(model).Exec(ctx)
	return err
}

func (s *Store) ListCashMovements(ctx context.Context, tenantID string, sessionID id.CashSessionID) ([]*cash.Movement, error) {
	var models []cashMovementModel
	err := s.pg.NewSelect(&models).
		Where("tenant_id = $1", tenantID).
		Where("session_id = $2", sessionID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*cash.Movement, len(models))
	for i := range models {
		mv, err := fromCashMovementModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = mv
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
