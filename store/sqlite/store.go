// Package sqlite implements the Brigade store on SQLite via Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
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

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("brigade/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("brigade/sqlite: migration failed: %w", err)
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetOrder(ctx context.Context, tenantID string, orderID id.OrderID) (*order.Order, error) {
	m := new(orderModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", orderID.String()).
		Where("tenant_id = ?", tenantID).
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
	q := s.sdb.NewSelect(&models).Where("tenant_id = ?", tenantID)

	if opts.SiteID != "" {
		q = q.Where("site_id = ?", opts.SiteID)
	}
	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
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
	res, err := s.sdb.NewUpdate((*orderModel)(nil)).
		Set("status = ?", string(o.Status)).
		Set("total_amount = ?", o.Total.Amount).
		Set("version = ?", o.Version+1).
		Set("updated_at = ?", now()).
		Where("id = ?", o.ID.String()).
		Where("tenant_id = ?", o.TenantID).
		Where("version = ?", o.Version).
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetLine(ctx context.Context, tenantID string, lineID id.OrderLineID) (*order.Line, error) {
	m := new(lineModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", lineID.String()).
		Where("tenant_id = ?", tenantID).
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
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("order_id = ?", orderID.String()).
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
	res, err := s.sdb.NewUpdate((*lineModel)(nil)).
		Set("quantity = ?", m.Quantity).
		Set("modifiers = ?", m.Modifiers).
		Set("notes = ?", m.Notes).
		Set("status = ?", m.LineStatus).
		Set("version = ?", l.Version+1).
		Set("updated_at = ?", now()).
		Where("id = ?", l.ID.String()).
		Where("tenant_id = ?", l.TenantID).
		Where("version = ?", l.Version).
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
	res, err := s.sdb.NewDelete((*lineModel)(nil)).
		Where("id = ?", lineID.String()).
		Where("tenant_id = ?", tenantID).
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListDiscounts(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Discount, error) {
	var models []discountModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("order_id = ?", orderID.String()).
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
	res, err := s.sdb.NewDelete((*discountModel)(nil)).
		Where("id = ?", discountID.String()).
		Where("tenant_id = ?", tenantID).
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) ([]*order.Consumption, error) {
	var models []consumptionModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("line_id = ?", lineID.String()).
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
	_, err := s.sdb.NewUpdate((*consumptionModel)(nil)).
		Set("voided_at = ?", t).
		Set("updated_at = ?", t).
		Where("tenant_id = ?", tenantID).
		Where("line_id = ?", lineID.String()).
		Where("voided_at IS NULL").
		Exec(ctx)
	return err
}

// ==================== Waste Store ====================

func (s *Store) CreateWasteEntry(ctx context.Context, w *order.WasteEntry) error {
	m := toWasteEntryModel(w)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPayment(ctx context.Context, tenantID string, paymentID id.PaymentID) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", paymentID.String()).
		Where("tenant_id = ?", tenantID).
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
	err := s.sdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("idempotency_key = ?", key).
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
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("order_id = ?", orderID.String()).
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
	res, err := s.sdb.NewUpdate((*paymentModel)(nil)).
		Set("status = ?", string(p.Status)).
		Set("voided_at = ?", p.VoidedAt).
		Set("void_reason = ?", p.VoidReason).
		Set("version = ?", p.Version+1).
		Set("updated_at = ?", now()).
		Where("id = ?", p.ID.String()).
		Where("tenant_id = ?", p.TenantID).
		Where("version = ?", p.Version).
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPrinter(ctx context.Context, tenantID string, printerID id.PrinterID) (*printing.Printer, error) {
	m := new(printerModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", printerID.String()).
		Where("tenant_id = ?", tenantID).
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
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("site_id = ?", siteID).
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
	res, err := s.sdb.NewUpdate((*printerModel)(nil)).
		Set("name = ?", p.Name).
		Set("zone = ?", p.Zone).
		Set("status = ?", string(p.Status)).
		Set("redirect_target = ?", p.RedirectTarget.String()).
		Set("updated_at = ?", now()).
		Where("id = ?", p.ID.String()).
		Where("tenant_id = ?", p.TenantID).
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPrintJob(ctx context.Context, tenantID string, jobID id.PrintJobID) (*printing.Job, error) {
	m := new(printJobModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", jobID.String()).
		Where("tenant_id = ?", tenantID).
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
	err := s.sdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("dedupe_key = ?", key).
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
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("order_id = ?", orderID.String()).
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
	res, err := s.sdb.NewUpdate((*printJobModel)(nil)).
		Set("status = ?", string(j.Status)).
		Set("updated_at = ?", now()).
		Where("id = ?", j.ID.String()).
		Where("tenant_id = ?", j.TenantID).
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCashRegister(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Register, error) {
	m := new(cashRegisterModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", registerID.String()).
		Where("tenant_id = ?", tenantID).
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
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("site_id = ?", siteID).
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCashSession(ctx context.Context, tenantID string, sessionID id.CashSessionID) (*cash.Session, error) {
	m := new(cashSessionModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", sessionID.String()).
		Where("tenant_id = ?", tenantID).
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
	err := s.sdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("register_id = ?", registerID.String()).
		Where("status = ?", string(cash.SessionOpen)).
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
	res, err := s.sdb.NewUpdate((*cashSessionModel)(nil)).
		Set("status = ?", string(sess.Status)).
		Set("expected_amount = ?", sess.ExpectedAmount.Amount).
		Set("counted_amount = ?", sess.CountedAmount.Amount).
		Set("difference = ?", sess.Difference.Amount).
		Set("closed_by = ?", sess.ClosedBy).
		Set("closed_at = ?", sess.ClosedAt).
		Set("version = ?", sess.Version+1).
		Set("updated_at = ?", now()).
		Where("id = ?", sess.ID.String()).
		Where("tenant_id = ?", sess.TenantID).
		Where("version = ?", sess.Version).
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
	_, err := s.sdb.NewInsert(model).Exec(ctx)
	return err
}

func (s *Store) ListCashMovements(ctx context.Context, tenantID string, sessionID id.CashSessionID) ([]*cash.Movement, error) {
	var models []cashMovementModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("session_id = ?", sessionID.String()).
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
