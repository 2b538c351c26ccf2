package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/brigade"
	"github.com/xraph/brigade/cash"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/printing"
	brigadestore "github.com/xraph/brigade/store"
)

// Collection name constants.
const (
	colOrders        = "brigade_orders"
	colLines         = "brigade_order_lines"
	colDiscounts     = "brigade_discounts"
	colConsumptions  = "brigade_consumptions"
	colWasteEntries  = "brigade_waste_entries"
	colPayments      = "brigade_payments"
	colPrinters      = "brigade_printers"
	colPrintJobs     = "brigade_print_jobs"
	colCashRegisters = "brigade_cash_registers"
	colCashSessions  = "brigade_cash_sessions"
	colCashMovements = "brigade_cash_movements"
)

// compile-time interface check
var _ brigadestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all brigade collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("brigade/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, tenantID string, orderID id.OrderID) (*order.Order, error) {
	var m orderModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": orderID.String(), "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrOrderNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get order: %w", err)
	}
	return fromOrderModel(&m)
}

func (s *Store) ListOrders(ctx context.Context, tenantID string, opts order.ListOpts) ([]*order.Order, error) {
	var models []orderModel

	filter := bson.M{"tenant_id": tenantID}
	if opts.SiteID != "" {
		filter["site_id"] = opts.SiteID
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("brigade/mongo: list orders: %w", err)
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

// UpdateOrder performs the explicit compare-and-increment write: the filter
// includes the version the caller read, and a zero match distinguishes a
// missing order from a stale one.
func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	res, err := s.mdb.NewUpdate((*orderModel)(nil)).
		Filter(bson.M{"_id": o.ID.String(), "tenant_id": o.TenantID, "version": o.Version}).
		Set("status", string(o.Status)).
		Set("total_amount", o.Total.Amount).
		Set("version", o.Version+1).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: update order: %w", err)
	}
	if res.MatchedCount() == 0 {
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create line: %w", err)
	}
	return nil
}

func (s *Store) GetLine(ctx context.Context, tenantID string, lineID id.OrderLineID) (*order.Line, error) {
	var m lineModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": lineID.String(), "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrLineNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get line: %w", err)
	}
	return fromLineModel(&m)
}

func (s *Store) ListLines(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Line, error) {
	var models []lineModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "order_id": orderID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list lines: %w", err)
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
	res, err := s.mdb.NewUpdate((*lineModel)(nil)).
		Filter(bson.M{"_id": l.ID.String(), "tenant_id": l.TenantID, "version": l.Version}).
		Set("quantity", l.Quantity).
		Set("modifiers", l.Modifiers).
		Set("notes", l.Notes).
		Set("status", string(l.Status)).
		Set("version", l.Version+1).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: update line: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, getErr := s.GetLine(ctx, l.TenantID, l.ID); getErr != nil {
			return getErr
		}
		return brigade.ErrVersionConflict
	}
	l.Bump()
	return nil
}

func (s *Store) DeleteLine(ctx context.Context, tenantID string, lineID id.OrderLineID) error {
	res, err := s.mdb.NewDelete((*lineModel)(nil)).
		Filter(bson.M{"_id": lineID.String(), "tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: delete line: %w", err)
	}
	if res.DeletedCount() == 0 {
		return brigade.ErrLineNotFound
	}
	return nil
}

// ==================== Discount Store ====================

func (s *Store) CreateDiscount(ctx context.Context, d *order.Discount) error {
	m := toDiscountModel(d)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create discount: %w", err)
	}
	return nil
}

func (s *Store) ListDiscounts(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Discount, error) {
	var models []discountModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "order_id": orderID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list discounts: %w", err)
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
	res, err := s.mdb.NewDelete((*discountModel)(nil)).
		Filter(bson.M{"_id": discountID.String(), "tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: delete discount: %w", err)
	}
	if res.DeletedCount() == 0 {
		return brigade.ErrDiscountNotFound
	}
	return nil
}

// ==================== Consumption Store ====================

func (s *Store) CreateConsumption(ctx context.Context, c *order.Consumption) error {
	m := toConsumptionModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create consumption: %w", err)
	}
	return nil
}

func (s *Store) ListConsumptionsByLine(ctx context.Context, tenantID string, lineID id.OrderLineID) ([]*order.Consumption, error) {
	var models []consumptionModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "line_id": lineID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list consumptions: %w", err)
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
	_, err := s.mdb.NewUpdate((*consumptionModel)(nil)).
		Filter(bson.M{"tenant_id": tenantID, "line_id": lineID.String(), "voided_at": nil}).
		Set("voided_at", t).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: void consumptions: %w", err)
	}
	return nil
}

// ==================== Waste Store ====================

func (s *Store) CreateWasteEntry(ctx context.Context, w *order.WasteEntry) error {
	m := toWasteEntryModel(w)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create waste entry: %w", err)
	}
	return nil
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, tenantID string, paymentID id.PaymentID) (*payment.Payment, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": paymentID.String(), "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get payment: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) GetPaymentByIdempotencyKey(ctx context.Context, tenantID, key string) (*payment.Payment, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "idempotency_key": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get payment by idempotency key: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) ListPaymentsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*payment.Payment, error) {
	var models []paymentModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "order_id": orderID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list payments: %w", err)
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
	res, err := s.mdb.NewUpdate((*paymentModel)(nil)).
		Filter(bson.M{"_id": p.ID.String(), "tenant_id": p.TenantID, "version": p.Version}).
		Set("status", string(p.Status)).
		Set("voided_at", p.VoidedAt).
		Set("void_reason", p.VoidReason).
		Set("version", p.Version+1).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: update payment: %w", err)
	}
	if res.MatchedCount() == 0 {
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create printer: %w", err)
	}
	return nil
}

func (s *Store) GetPrinter(ctx context.Context, tenantID string, printerID id.PrinterID) (*printing.Printer, error) {
	var m printerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": printerID.String(), "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrPrinterNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get printer: %w", err)
	}
	return fromPrinterModel(&m)
}

func (s *Store) ListPrinters(ctx context.Context, tenantID, siteID string) ([]*printing.Printer, error) {
	var models []printerModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "site_id": siteID}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list printers: %w", err)
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
	res, err := s.mdb.NewUpdate((*printerModel)(nil)).
		Filter(bson.M{"_id": p.ID.String(), "tenant_id": p.TenantID}).
		Set("name", p.Name).
		Set("zone", p.Zone).
		Set("status", string(p.Status)).
		Set("redirect_target", p.RedirectTarget.String()).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: update printer: %w", err)
	}
	if res.MatchedCount() == 0 {
		return brigade.ErrPrinterNotFound
	}
	return nil
}

// ==================== Print job Store ====================

func (s *Store) CreatePrintJob(ctx context.Context, j *printing.Job) error {
	m := toPrintJobModel(j)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create print job: %w", err)
	}
	return nil
}

func (s *Store) GetPrintJob(ctx context.Context, tenantID string, jobID id.PrintJobID) (*printing.Job, error) {
	var m printJobModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": jobID.String(), "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrPrintJobNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get print job: %w", err)
	}
	return fromPrintJobModel(&m)
}

func (s *Store) GetPrintJobByDedupeKey(ctx context.Context, tenantID, key string) (*printing.Job, error) {
	var m printJobModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "dedupe_key": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrPrintJobNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get print job by dedupe key: %w", err)
	}
	return fromPrintJobModel(&m)
}

func (s *Store) ListPrintJobsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*printing.Job, error) {
	var models []printJobModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "order_id": orderID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list print jobs: %w", err)
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
	res, err := s.mdb.NewUpdate((*printJobModel)(nil)).
		Filter(bson.M{"_id": j.ID.String(), "tenant_id": j.TenantID}).
		Set("status", string(j.Status)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: update print job: %w", err)
	}
	if res.MatchedCount() == 0 {
		return brigade.ErrPrintJobNotFound
	}
	return nil
}

// ==================== Cash register Store ====================

func (s *Store) CreateCashRegister(ctx context.Context, r *cash.Register) error {
	m := toCashRegisterModel(r)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create cash register: %w", err)
	}
	return nil
}

func (s *Store) GetCashRegister(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Register, error) {
	var m cashRegisterModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": registerID.String(), "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrRegisterNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get cash register: %w", err)
	}
	return fromCashRegisterModel(&m)
}

func (s *Store) ListCashRegisters(ctx context.Context, tenantID, siteID string) ([]*cash.Register, error) {
	var models []cashRegisterModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "site_id": siteID}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list cash registers: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create cash session: %w", err)
	}
	return nil
}

func (s *Store) GetCashSession(ctx context.Context, tenantID string, sessionID id.CashSessionID) (*cash.Session, error) {
	var m cashSessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": sessionID.String(), "tenant_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrSessionNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get cash session: %w", err)
	}
	return fromCashSessionModel(&m)
}

func (s *Store) GetOpenCashSession(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Session, error) {
	var m cashSessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"tenant_id":   tenantID,
			"register_id": registerID.String(),
			"status":      string(cash.SessionOpen),
		}).
		Sort(bson.D{{Key: "created_at", Value: -1}}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, brigade.ErrSessionNotFound
		}
		return nil, fmt.Errorf("brigade/mongo: get open cash session: %w", err)
	}
	return fromCashSessionModel(&m)
}

func (s *Store) UpdateCashSession(ctx context.Context, sess *cash.Session) error {
	res, err := s.mdb.NewUpdate((*cashSessionModel)(nil)).
		Filter(bson.M{"_id": sess.ID.String(), "tenant_id": sess.TenantID, "version": sess.Version}).
		Set("status", string(sess.Status)).
		Set("expected_amount", sess.ExpectedAmount.Amount).
		Set("counted_amount", sess.CountedAmount.Amount).
		Set("difference", sess.Difference.Amount).
		Set("closed_by", sess.ClosedBy).
		Set("closed_at", sess.ClosedAt).
		Set("version", sess.Version+1).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: update cash session: %w", err)
	}
	if res.MatchedCount() == 0 {
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
	_, err := s.mdb.NewInsert(model).Exec(ctx)
	if err != nil {
		return fmt.Errorf("brigade/mongo: create cash movement: %w", err)
	}
	return nil
}

func (s *Store) ListCashMovements(ctx context.Context, tenantID string, sessionID id.CashSessionID) ([]*cash.Movement, error) {
	var models []cashMovementModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "session_id": sessionID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("brigade/mongo: list cash movements: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all brigade collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colOrders: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "site_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colLines: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "order_id", Value: 1}}},
		},
		colDiscounts: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "order_id", Value: 1}}},
		},
		colConsumptions: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "line_id", Value: 1}}},
		},
		colWasteEntries: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "site_id", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "order_id", Value: 1}}},
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colPrinters: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "site_id", Value: 1}}},
		},
		colPrintJobs: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "order_id", Value: 1}}},
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "dedupe_key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colCashRegisters: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "site_id", Value: 1}}},
		},
		colCashSessions: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "register_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colCashMovements: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "session_id", Value: 1}}},
		},
	}
}
