// Package memory provides an in-memory Store implementation for tests and
// prototyping.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/brigade"
	"github.com/xraph/brigade/cash"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/printing"
)

// Store keeps snapshots of every entity rather than caller pointers, so
// version checks see what was actually written, not the caller's later
// mutations.
type Store struct {
	mu sync.RWMutex

	orders       map[string]*order.Order
	lines        map[string]*order.Line
	discounts    map[string]*order.Discount
	consumptions map[string]*order.Consumption
	wasteEntries map[string]*order.WasteEntry

	payments map[string]*payment.Payment

	printers  map[string]*printing.Printer
	printJobs map[string]*printing.Job

	registers map[string]*cash.Register
	sessions  map[string]*cash.Session
	movements map[string]*cash.Movement
}

func New() *Store {
	return &Store{
		orders:       make(map[string]*order.Order),
		lines:        make(map[string]*order.Line),
		discounts:    make(map[string]*order.Discount),
		consumptions: make(map[string]*order.Consumption),
		wasteEntries: make(map[string]*order.WasteEntry),
		payments:     make(map[string]*payment.Payment),
		printers:     make(map[string]*printing.Printer),
		printJobs:    make(map[string]*printing.Job),
		registers:    make(map[string]*cash.Register),
		sessions:     make(map[string]*cash.Session),
		movements:    make(map[string]*cash.Movement),
	}
}

// Order Store implementation

func (s *Store) CreateOrder(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	s.orders[o.ID.String()] = cloneOrder(o)
	return nil
}

func (s *Store) GetOrder(_ context.Context, tenantID string, orderID id.OrderID) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.orders[orderID.String()]; ok && o.TenantID == tenantID {
		return cloneOrder(o), nil
	}
	return nil, brigade.ErrOrderNotFound
}

func (s *Store) ListOrders(_ context.Context, tenantID string, opts order.ListOpts) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*order.Order, 0)
	for _, o := range s.orders {
		if o.TenantID != tenantID {
			continue
		}
		if opts.SiteID != "" && o.SiteID != opts.SiteID {
			continue
		}
		if opts.Status != "" && o.Status != opts.Status {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	sortByID(result, func(o *order.Order) string { return o.ID.String() })

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateOrder(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.orders[o.ID.String()]
	if !exists || stored.TenantID != o.TenantID {
		return brigade.ErrOrderNotFound
	}
	if stored.Version != o.Version {
		return brigade.ErrVersionConflict
	}
	o.Bump()
	s.orders[o.ID.String()] = cloneOrder(o)
	return nil
}

// Order line Store implementation

func (s *Store) CreateLine(_ context.Context, l *order.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lines[l.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	s.lines[l.ID.String()] = cloneLine(l)
	return nil
}

func (s *Store) GetLine(_ context.Context, tenantID string, lineID id.OrderLineID) (*order.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.lines[lineID.String()]; ok && l.TenantID == tenantID {
		return cloneLine(l), nil
	}
	return nil, brigade.ErrLineNotFound
}

func (s *Store) ListLines(_ context.Context, tenantID string, orderID id.OrderID) ([]*order.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*order.Line, 0)
	for _, l := range s.lines {
		if l.TenantID == tenantID && l.OrderID == orderID {
			result = append(result, cloneLine(l))
		}
	}
	sortByID(result, func(l *order.Line) string { return l.ID.String() })
	return result, nil
}

func (s *Store) UpdateLine(_ context.Context, l *order.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.lines[l.ID.String()]
	if !exists || stored.TenantID != l.TenantID {
		return brigade.ErrLineNotFound
	}
	if stored.Version != l.Version {
		return brigade.ErrVersionConflict
	}
	l.Bump()
	s.lines[l.ID.String()] = cloneLine(l)
	return nil
}

func (s *Store) DeleteLine(_ context.Context, tenantID string, lineID id.OrderLineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.lines[lineID.String()]
	if !exists || stored.TenantID != tenantID {
		return brigade.ErrLineNotFound
	}
	delete(s.lines, lineID.String())
	return nil
}

// Discount Store implementation

func (s *Store) CreateDiscount(_ context.Context, d *order.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.discounts[d.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	clone := *d
	s.discounts[d.ID.String()] = &clone
	return nil
}

func (s *Store) ListDiscounts(_ context.Context, tenantID string, orderID id.OrderID) ([]*order.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*order.Discount, 0)
	for _, d := range s.discounts {
		if d.TenantID == tenantID && d.OrderID == orderID {
			clone := *d
			result = append(result, &clone)
		}
	}
	sortByID(result, func(d *order.Discount) string { return d.ID.String() })
	return result, nil
}

func (s *Store) DeleteDiscount(_ context.Context, tenantID string, discountID id.DiscountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.discounts[discountID.String()]
	if !exists || stored.TenantID != tenantID {
		return brigade.ErrDiscountNotFound
	}
	delete(s.discounts, discountID.String())
	return nil
}

// Consumption Store implementation

func (s *Store) CreateConsumption(_ context.Context, c *order.Consumption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.consumptions[c.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	clone := *c
	s.consumptions[c.ID.String()] = &clone
	return nil
}

func (s *Store) ListConsumptionsByLine(_ context.Context, tenantID string, lineID id.OrderLineID) ([]*order.Consumption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*order.Consumption, 0)
	for _, c := range s.consumptions {
		if c.TenantID == tenantID && c.LineID == lineID {
			clone := *c
			result = append(result, &clone)
		}
	}
	sortByID(result, func(c *order.Consumption) string { return c.ID.String() })
	return result, nil
}

func (s *Store) VoidConsumptionsByLine(_ context.Context, tenantID string, lineID id.OrderLineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, c := range s.consumptions {
		if c.TenantID == tenantID && c.LineID == lineID && c.VoidedAt == nil {
			t := now
			c.VoidedAt = &t
		}
	}
	return nil
}

// Waste Store implementation

func (s *Store) CreateWasteEntry(_ context.Context, w *order.WasteEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wasteEntries[w.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	clone := *w
	s.wasteEntries[w.ID.String()] = &clone
	return nil
}

// Payment Store implementation

func (s *Store) CreatePayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	for _, existing := range s.payments {
		if existing.TenantID == p.TenantID && existing.IdempotencyKey == p.IdempotencyKey {
			return brigade.ErrAlreadyExists
		}
	}
	clone := *p
	s.payments[p.ID.String()] = &clone
	return nil
}

func (s *Store) GetPayment(_ context.Context, tenantID string, paymentID id.PaymentID) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.payments[paymentID.String()]; ok && p.TenantID == tenantID {
		clone := *p
		return &clone, nil
	}
	return nil, brigade.ErrPaymentNotFound
}

func (s *Store) GetPaymentByIdempotencyKey(_ context.Context, tenantID, key string) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		if p.TenantID == tenantID && p.IdempotencyKey == key {
			clone := *p
			return &clone, nil
		}
	}
	return nil, brigade.ErrPaymentNotFound
}

func (s *Store) ListPaymentsByOrder(_ context.Context, tenantID string, orderID id.OrderID) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*payment.Payment, 0)
	for _, p := range s.payments {
		if p.TenantID == tenantID && p.OrderID == orderID {
			clone := *p
			result = append(result, &clone)
		}
	}
	sortByID(result, func(p *payment.Payment) string { return p.ID.String() })
	return result, nil
}

func (s *Store) UpdatePayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.payments[p.ID.String()]
	if !exists || stored.TenantID != p.TenantID {
		return brigade.ErrPaymentNotFound
	}
	if stored.Version != p.Version {
		return brigade.ErrVersionConflict
	}
	p.Bump()
	clone := *p
	s.payments[p.ID.String()] = &clone
	return nil
}

// Printer Store implementation

func (s *Store) CreatePrinter(_ context.Context, p *printing.Printer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.printers[p.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	clone := *p
	s.printers[p.ID.String()] = &clone
	return nil
}

func (s *Store) GetPrinter(_ context.Context, tenantID string, printerID id.PrinterID) (*printing.Printer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.printers[printerID.String()]; ok && p.TenantID == tenantID {
		clone := *p
		return &clone, nil
	}
	return nil, brigade.ErrPrinterNotFound
}

func (s *Store) ListPrinters(_ context.Context, tenantID, siteID string) ([]*printing.Printer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*printing.Printer, 0)
	for _, p := range s.printers {
		if p.TenantID == tenantID && p.SiteID == siteID {
			clone := *p
			result = append(result, &clone)
		}
	}
	sortByID(result, func(p *printing.Printer) string { return p.ID.String() })
	return result, nil
}

func (s *Store) UpdatePrinter(_ context.Context, p *printing.Printer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.printers[p.ID.String()]
	if !exists || stored.TenantID != p.TenantID {
		return brigade.ErrPrinterNotFound
	}
	clone := *p
	s.printers[p.ID.String()] = &clone
	return nil
}

// Print job Store implementation

func (s *Store) CreatePrintJob(_ context.Context, j *printing.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.printJobs[j.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	for _, existing := range s.printJobs {
		if existing.TenantID == j.TenantID && existing.DedupeKey == j.DedupeKey {
			return brigade.ErrAlreadyExists
		}
	}
	clone := *j
	s.printJobs[j.ID.String()] = &clone
	return nil
}

func (s *Store) GetPrintJob(_ context.Context, tenantID string, jobID id.PrintJobID) (*printing.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if j, ok := s.printJobs[jobID.String()]; ok && j.TenantID == tenantID {
		clone := *j
		return &clone, nil
	}
	return nil, brigade.ErrPrintJobNotFound
}

func (s *Store) GetPrintJobByDedupeKey(_ context.Context, tenantID, key string) (*printing.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.printJobs {
		if j.TenantID == tenantID && j.DedupeKey == key {
			clone := *j
			return &clone, nil
		}
	}
	return nil, brigade.ErrPrintJobNotFound
}

func (s *Store) ListPrintJobsByOrder(_ context.Context, tenantID string, orderID id.OrderID) ([]*printing.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*printing.Job, 0)
	for _, j := range s.printJobs {
		if j.TenantID == tenantID && j.OrderID == orderID {
			clone := *j
			result = append(result, &clone)
		}
	}
	sortByID(result, func(j *printing.Job) string { return j.ID.String() })
	return result, nil
}

func (s *Store) UpdatePrintJob(_ context.Context, j *printing.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.printJobs[j.ID.String()]
	if !exists || stored.TenantID != j.TenantID {
		return brigade.ErrPrintJobNotFound
	}
	clone := *j
	s.printJobs[j.ID.String()] = &clone
	return nil
}

// Cash register Store implementation

func (s *Store) CreateCashRegister(_ context.Context, r *cash.Register) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registers[r.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	clone := *r
	s.registers[r.ID.String()] = &clone
	return nil
}

func (s *Store) GetCashRegister(_ context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Register, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.registers[registerID.String()]; ok && r.TenantID == tenantID {
		clone := *r
		return &clone, nil
	}
	return nil, brigade.ErrRegisterNotFound
}

func (s *Store) ListCashRegisters(_ context.Context, tenantID, siteID string) ([]*cash.Register, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*cash.Register, 0)
	for _, r := range s.registers {
		if r.TenantID == tenantID && r.SiteID == siteID {
			clone := *r
			result = append(result, &clone)
		}
	}
	sortByID(result, func(r *cash.Register) string { return r.ID.String() })
	return result, nil
}

// Cash session Store implementation

func (s *Store) CreateCashSession(_ context.Context, sess *cash.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	clone := *sess
	s.sessions[sess.ID.String()] = &clone
	return nil
}

func (s *Store) GetCashSession(_ context.Context, tenantID string, sessionID id.CashSessionID) (*cash.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[sessionID.String()]; ok && sess.TenantID == tenantID {
		clone := *sess
		return &clone, nil
	}
	return nil, brigade.ErrSessionNotFound
}

func (s *Store) GetOpenCashSession(_ context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *cash.Session
	for _, sess := range s.sessions {
		if sess.TenantID != tenantID || sess.RegisterID != registerID || sess.Status != cash.SessionOpen {
			continue
		}
		if latest == nil || sess.CreatedAt.After(latest.CreatedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, brigade.ErrSessionNotFound
	}
	clone := *latest
	return &clone, nil
}

func (s *Store) UpdateCashSession(_ context.Context, sess *cash.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[sess.ID.String()]
	if !exists || stored.TenantID != sess.TenantID {
		return brigade.ErrSessionNotFound
	}
	if stored.Version != sess.Version {
		return brigade.ErrVersionConflict
	}
	sess.Bump()
	clone := *sess
	s.sessions[sess.ID.String()] = &clone
	return nil
}

// Cash movement Store implementation

func (s *Store) CreateCashMovement(_ context.Context, m *cash.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.movements[m.ID.String()]; exists {
		return brigade.ErrAlreadyExists
	}
	clone := *m
	s.movements[m.ID.String()] = &clone
	return nil
}

func (s *Store) ListCashMovements(_ context.Context, tenantID string, sessionID id.CashSessionID) ([]*cash.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*cash.Movement, 0)
	for _, m := range s.movements {
		if m.TenantID == tenantID && m.SessionID == sessionID {
			clone := *m
			result = append(result, &clone)
		}
	}
	sortByID(result, func(m *cash.Movement) string { return m.ID.String() })
	return result, nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }
func (s *Store) Ping(_ context.Context) error    { return nil }
func (s *Store) Close() error                    { return nil }

// helpers

func cloneOrder(o *order.Order) *order.Order {
	clone := *o
	return &clone
}

func cloneLine(l *order.Line) *order.Line {
	clone := *l
	if l.Modifiers != nil {
		clone.Modifiers = make(map[string]string, len(l.Modifiers))
		for k, v := range l.Modifiers {
			clone.Modifiers[k] = v
		}
	}
	return &clone
}

func sortByID[T any](items []T, key func(T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
