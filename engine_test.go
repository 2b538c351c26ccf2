package brigade_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	brigade "github.com/xraph/brigade"
	"github.com/xraph/brigade/cash"
	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/payment"
	"github.com/xraph/brigade/printing"
	"github.com/xraph/brigade/store"
	"github.com/xraph/brigade/store/memory"
	"github.com/xraph/brigade/types"
)

var testScope = brigade.Scope{TenantID: "tenant_1", ActorID: "operator_1"}

// testCatalog resolves a small fixed menu.
func testCatalog() brigade.Catalog {
	menu := map[string]brigade.ItemInfo{
		"itm_burger": {ItemID: "itm_burger", Name: "Burger", UnitPrice: types.USD(1000), Available: true},
		"itm_fries":  {ItemID: "itm_fries", Name: "Fries", UnitPrice: types.USD(500), Available: true},
		"itm_season": {ItemID: "itm_season", Name: "Seasonal Special", UnitPrice: types.USD(1500), Available: false},
	}
	return brigade.CatalogFunc(func(_ context.Context, _, _, itemID string) (*brigade.ItemInfo, error) {
		info, ok := menu[itemID]
		if !ok {
			return nil, nil
		}
		return &info, nil
	})
}

func allowAll() brigade.Authorizer {
	return brigade.AuthorizerFunc(func(_ context.Context, _ brigade.Scope, _ string) (bool, error) {
		return true, nil
	})
}

// recordingDeliverer captures delivered tickets and can be told to fail.
type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []string // printer names
	contents  []string
	fail      bool
}

func (d *recordingDeliverer) Deliver(_ context.Context, p *printing.Printer, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("paper jam")
	}
	d.delivered = append(d.delivered, p.Name)
	d.contents = append(d.contents, content)
	return nil
}

type fixture struct {
	store     *memory.Store
	engine    *brigade.Engine
	deliverer *recordingDeliverer
}

func newFixture(t *testing.T, opts ...brigade.Option) *fixture {
	t.Helper()

	f := &fixture{
		store:     memory.New(),
		deliverer: &recordingDeliverer{},
	}

	base := []brigade.Option{
		brigade.WithCatalog(testCatalog()),
		brigade.WithAuthorizer(allowAll()),
		brigade.WithPrintDeliverer(f.deliverer),
	}
	f.engine = brigade.New(f.store, append(base, opts...)...)

	if err := f.engine.Start(context.Background()); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	return f
}

// openOrder creates an order with a burger x2 and fries x1: total $25.00.
func (f *fixture) openOrder(t *testing.T) *order.Order {
	t.Helper()
	ctx := context.Background()

	o, err := f.engine.CreateOrder(ctx, testScope, brigade.CreateOrderRequest{
		SiteID:   "site_1",
		Type:     order.TypeDineIn,
		TableID:  "table_7",
		Currency: "usd",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := f.engine.AddLine(ctx, testScope, brigade.AddLineRequest{
		OrderID:  o.ID,
		ItemID:   "itm_burger",
		Quantity: 2,
	}); err != nil {
		t.Fatalf("add burger line: %v", err)
	}
	if _, err := f.engine.AddLine(ctx, testScope, brigade.AddLineRequest{
		OrderID:  o.ID,
		ItemID:   "itm_fries",
		Quantity: 1,
	}); err != nil {
		t.Fatalf("add fries line: %v", err)
	}

	o, err = f.engine.GetOrder(ctx, testScope, o.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	return o
}

func TestOrderTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.openOrder(t)
	if got := o.Total.Amount; got != 2500 {
		t.Fatalf("line sum = %d, want 2500", got)
	}

	t.Run("OrderLevelPercentage", func(t *testing.T) {
		if _, err := f.engine.ApplyDiscount(ctx, testScope, brigade.DiscountRequest{
			OrderID:    o.ID,
			Type:       order.DiscountPercentage,
			Percentage: 10,
			Reason:     "regular",
		}); err != nil {
			t.Fatalf("apply discount: %v", err)
		}

		got, err := f.engine.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Total.Amount != 2250 {
			t.Fatalf("total after 10%% = %d, want 2250", got.Total.Amount)
		}
	})

	t.Run("TotalNeverNegative", func(t *testing.T) {
		if _, err := f.engine.ApplyDiscount(ctx, testScope, brigade.DiscountRequest{
			OrderID: o.ID,
			Type:    order.DiscountFixedAmount,
			Amount:  types.USD(99999),
			Reason:  "comp",
		}); err != nil {
			t.Fatalf("apply discount: %v", err)
		}

		got, err := f.engine.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Total.Amount != 0 {
			t.Fatalf("total floored = %d, want 0", got.Total.Amount)
		}
	})

	t.Run("VoidedLineExcluded", func(t *testing.T) {
		f2 := newFixture(t)
		o2 := f2.openOrder(t)

		lines, err := f2.engine.ListLines(ctx, testScope, o2.ID)
		if err != nil {
			t.Fatal(err)
		}
		var burgers *order.Line
		for _, l := range lines {
			if l.ItemID == "itm_burger" {
				burgers = l
				break
			}
		}
		if err := f2.engine.VoidLine(ctx, testScope, burgers.ID, "customer changed mind", false); err != nil {
			t.Fatalf("void line: %v", err)
		}

		got, err := f2.engine.GetOrder(ctx, testScope, o2.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Total.Amount != 500 {
			t.Fatalf("total after voiding burgers = %d, want 500", got.Total.Amount)
		}
	})
}

func TestAddLineValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.openOrder(t)

	t.Run("UnknownItem", func(t *testing.T) {
		_, err := f.engine.AddLine(ctx, testScope, brigade.AddLineRequest{
			OrderID: o.ID, ItemID: "itm_nope", Quantity: 1,
		})
		if !errors.Is(err, brigade.ErrItemUnavailable) {
			t.Fatalf("err = %v, want ErrItemUnavailable", err)
		}
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		_, err := f.engine.AddLine(ctx, testScope, brigade.AddLineRequest{
			OrderID: o.ID, ItemID: "itm_season", Quantity: 1,
		})
		if !errors.Is(err, brigade.ErrItemUnavailable) {
			t.Fatalf("err = %v, want ErrItemUnavailable", err)
		}
	})

	t.Run("NonPositiveQuantity", func(t *testing.T) {
		_, err := f.engine.AddLine(ctx, testScope, brigade.AddLineRequest{
			OrderID: o.ID, ItemID: "itm_fries", Quantity: 0,
		})
		if !brigade.IsValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})
}

func TestConfirmOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmsLinesAndWritesConsumptions", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)

		confirmed, err := f.engine.ConfirmOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if confirmed.Status != order.StatusConfirmed {
			t.Fatalf("status = %s, want confirmed", confirmed.Status)
		}

		lines, err := f.engine.ListLines(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, l := range lines {
			if l.Status != order.LineStatusConfirmed {
				t.Fatalf("line %s status = %s, want confirmed", l.ID, l.Status)
			}
			cons, err := f.store.ListConsumptionsByLine(ctx, testScope.TenantID, l.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(cons) != 1 {
				t.Fatalf("line %s has %d consumptions, want 1", l.ID, len(cons))
			}
			if cons[0].Quantity != l.Quantity {
				t.Fatalf("consumption quantity = %d, want %d", cons[0].Quantity, l.Quantity)
			}
		}
	})

	t.Run("ReconfirmRejected", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)

		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		_, err := f.engine.ConfirmOrder(ctx, testScope, o.ID)
		if !errors.Is(err, brigade.ErrOrderNotOpen) {
			t.Fatalf("err = %v, want ErrOrderNotOpen", err)
		}
	})

	t.Run("NoPendingLines", func(t *testing.T) {
		f := newFixture(t)
		o, err := f.engine.CreateOrder(ctx, testScope, brigade.CreateOrderRequest{
			SiteID: "site_1", Type: order.TypeTakeout, Currency: "usd",
		})
		if err != nil {
			t.Fatal(err)
		}
		_, err = f.engine.ConfirmOrder(ctx, testScope, o.ID)
		if !errors.Is(err, brigade.ErrNoPendingLines) {
			t.Fatalf("err = %v, want ErrNoPendingLines", err)
		}
	})

	t.Run("SubscriberFailureUnwinds", func(t *testing.T) {
		failing := &failingSubscriber{}
		f := newFixture(t, brigade.WithSubscriber(failing))
		o := f.openOrder(t)

		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err == nil {
			t.Fatal("confirm succeeded despite failing subscriber")
		}

		got, err := f.engine.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != order.StatusOpen {
			t.Fatalf("order status = %s, want open after unwind", got.Status)
		}
		lines, err := f.engine.ListLines(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, l := range lines {
			if l.Status != order.LineStatusPending {
				t.Fatalf("line %s status = %s, want pending after unwind", l.ID, l.Status)
			}
		}
	})
}

// failingSubscriber rejects every order confirmation.
type failingSubscriber struct{}

func (s *failingSubscriber) Name() string { return "kitchen-display" }

func (s *failingSubscriber) OnOrderConfirmed(context.Context, *event.OrderConfirmed) error {
	return errors.New("display offline")
}

// flakySubscriber fails a set number of confirmations, then recovers.
type flakySubscriber struct{ failures int }

func (s *flakySubscriber) Name() string { return "expo-display" }

func (s *flakySubscriber) OnOrderConfirmed(context.Context, *event.OrderConfirmed) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("display offline")
	}
	return nil
}

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("IdempotencyReplay", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}

		req := brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(2500),
			Method:         payment.MethodCard,
			IdempotencyKey: "pay-key-1",
		}

		first, err := f.engine.ProcessPayment(ctx, testScope, req)
		if err != nil {
			t.Fatalf("first payment: %v", err)
		}
		second, err := f.engine.ProcessPayment(ctx, testScope, req)
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("replay returned %s, want %s", second.ID, first.ID)
		}

		payments, err := f.engine.ListPayments(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(payments) != 1 {
			t.Fatalf("stored payments = %d, want 1", len(payments))
		}
	})

	t.Run("AutoClose", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}

		if _, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(1000),
			Method:         payment.MethodCard,
			IdempotencyKey: "split-1",
		}); err != nil {
			t.Fatal(err)
		}

		got, err := f.engine.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != order.StatusConfirmed {
			t.Fatalf("partially paid order status = %s, want confirmed", got.Status)
		}

		if _, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(1500),
			Method:         payment.MethodCash,
			IdempotencyKey: "split-2",
		}); err != nil {
			t.Fatal(err)
		}

		got, err = f.engine.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != order.StatusClosed {
			t.Fatalf("fully paid order status = %s, want closed", got.Status)
		}
	})

	t.Run("ClosedOrderRejectsPayment", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(2500),
			Method:         payment.MethodCard,
			IdempotencyKey: "full",
		}); err != nil {
			t.Fatal(err)
		}

		_, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(100),
			Method:         payment.MethodCard,
			IdempotencyKey: "late",
		})
		if !errors.Is(err, brigade.ErrOrderNotPayable) {
			t.Fatalf("err = %v, want ErrOrderNotPayable", err)
		}
	})

	t.Run("CurrencyMismatch", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)

		_, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.EUR(2500),
			Method:         payment.MethodCard,
			IdempotencyKey: "wrong-currency",
		})
		if !errors.Is(err, brigade.ErrCurrencyMismatch) {
			t.Fatalf("err = %v, want ErrCurrencyMismatch", err)
		}
	})
}

func TestCalculateChange(t *testing.T) {
	if got := brigade.CalculateChange(types.USD(2250), types.USD(3000)); got.Amount != 750 {
		t.Fatalf("change = %d, want 750", got.Amount)
	}
	if got := brigade.CalculateChange(types.USD(2250), types.USD(2000)); got.Amount != 0 {
		t.Fatalf("change on underpay = %d, want 0", got.Amount)
	}
}

func TestVoidPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.openOrder(t)
	if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
		t.Fatal(err)
	}
	p, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
		OrderID:        o.ID,
		Amount:         types.USD(2500),
		Method:         payment.MethodCard,
		IdempotencyKey: "to-void",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.engine.VoidPayment(ctx, testScope, p.ID, "charged twice"); err != nil {
		t.Fatalf("void payment: %v", err)
	}

	// Voiding again is an invalid-state error.
	err = f.engine.VoidPayment(ctx, testScope, p.ID, "again")
	if !errors.Is(err, brigade.ErrPaymentVoided) {
		t.Fatalf("err = %v, want ErrPaymentVoided", err)
	}

	// The order stays closed; voiding never reopens.
	got, err := f.engine.GetOrder(ctx, testScope, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != order.StatusClosed {
		t.Fatalf("order status = %s, want closed", got.Status)
	}
}

func TestPrintRouting(t *testing.T) {
	ctx := context.Background()

	t.Run("FanOutPerLinePerPrinter", func(t *testing.T) {
		f := newFixture(t)
		for _, name := range []string{"Kitchen", "Bar"} {
			if _, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{
				SiteID: "site_1", Name: name, Zone: name,
			}); err != nil {
				t.Fatal(err)
			}
		}

		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}

		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) != 4 {
			t.Fatalf("jobs = %d, want 4 (2 lines x 2 printers)", len(jobs))
		}
		for _, j := range jobs {
			if j.Status != printing.JobPending {
				t.Fatalf("job %s status = %s, want pending", j.ID, j.Status)
			}
		}
	})

	t.Run("ProcessDelivers", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{
			SiteID: "site_1", Name: "Kitchen", Zone: "hot",
		}); err != nil {
			t.Fatal(err)
		}

		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}

		done, err := f.engine.ProcessPrintJob(ctx, testScope, jobs[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if done.Status != printing.JobPrinted {
			t.Fatalf("job status = %s, want printed", done.Status)
		}
		if len(f.deliverer.delivered) != 1 {
			t.Fatalf("deliveries = %d, want 1", len(f.deliverer.delivered))
		}

		// Re-processing a settled job is a no-op.
		again, err := f.engine.ProcessPrintJob(ctx, testScope, jobs[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if again.Status != printing.JobPrinted || len(f.deliverer.delivered) != 1 {
			t.Fatal("re-processing a printed job delivered again")
		}
	})

	t.Run("DeliveryFailureMarksFailed", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{
			SiteID: "site_1", Name: "Kitchen",
		}); err != nil {
			t.Fatal(err)
		}
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}

		f.deliverer.fail = true
		done, err := f.engine.ProcessPrintJob(ctx, testScope, jobs[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if done.Status != printing.JobFailed {
			t.Fatalf("job status = %s, want failed", done.Status)
		}
	})

	t.Run("IgnoreSkips", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{
			SiteID: "site_1", Name: "Kitchen",
		})
		if err != nil {
			t.Fatal(err)
		}
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.UpdatePrinterStatus(ctx, testScope, p.ID, printing.PrinterIgnore); err != nil {
			t.Fatal(err)
		}

		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		done, err := f.engine.ProcessPrintJob(ctx, testScope, jobs[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if done.Status != printing.JobSkipped {
			t.Fatalf("job status = %s, want skipped", done.Status)
		}
	})

	t.Run("WaitLeavesPending", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{
			SiteID: "site_1", Name: "Kitchen",
		})
		if err != nil {
			t.Fatal(err)
		}
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.UpdatePrinterStatus(ctx, testScope, p.ID, printing.PrinterWait); err != nil {
			t.Fatal(err)
		}

		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		done, err := f.engine.ProcessPrintJob(ctx, testScope, jobs[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if done.Status != printing.JobPending {
			t.Fatalf("job status = %s, want still pending", done.Status)
		}
		if len(f.deliverer.delivered) != 0 {
			t.Fatal("wait printer delivered")
		}
	})

	t.Run("RedeliveryCreatesNoDuplicateJobs", func(t *testing.T) {
		// A confirmation that fails downstream leaves its jobs behind;
		// the retry re-publishes the same event and the dedupe keys
		// must absorb it.
		flaky := &flakySubscriber{failures: 1}
		f := newFixture(t, brigade.WithSubscriber(flaky))
		if _, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{
			SiteID: "site_1", Name: "Kitchen",
		}); err != nil {
			t.Fatal(err)
		}

		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err == nil {
			t.Fatal("first confirm should fail through the flaky subscriber")
		}
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatalf("retry confirm: %v", err)
		}

		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) != 2 {
			t.Fatalf("jobs after redelivery = %d, want 2", len(jobs))
		}
		for _, j := range jobs {
			if j.Status != printing.JobPending {
				t.Fatalf("job %s status = %s, want pending", j.ID, j.Status)
			}
		}
	})

	t.Run("RedirectToIgnoreResolvesSkipped", func(t *testing.T) {
		f := newFixture(t)
		a, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "Kitchen"})
		if err != nil {
			t.Fatal(err)
		}
		b, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "Backup"})
		if err != nil {
			t.Fatal(err)
		}

		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.UpdatePrinterStatus(ctx, testScope, b.ID, printing.PrinterIgnore); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.RedirectPrinter(ctx, testScope, a.ID, b.ID); err != nil {
			t.Fatal(err)
		}

		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		var aJob *printing.Job
		for _, j := range jobs {
			if j.PrinterID == a.ID {
				aJob = j
				break
			}
		}
		if aJob == nil {
			t.Fatal("no job addressed to redirected printer")
		}

		done, err := f.engine.ProcessPrintJob(ctx, testScope, aJob.ID)
		if err != nil {
			t.Fatal(err)
		}
		if done.Status != printing.JobSkipped {
			t.Fatalf("job status = %s, want skipped", done.Status)
		}
		if len(f.deliverer.delivered) != 0 {
			t.Fatal("skipped job was delivered")
		}
	})

	t.Run("RedirectFollowsChain", func(t *testing.T) {
		f := newFixture(t)
		a, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "Kitchen"})
		if err != nil {
			t.Fatal(err)
		}
		b, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "Backup"})
		if err != nil {
			t.Fatal(err)
		}

		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.RedirectPrinter(ctx, testScope, a.ID, b.ID); err != nil {
			t.Fatal(err)
		}

		jobs, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		var aJob *printing.Job
		for _, j := range jobs {
			if j.PrinterID == a.ID {
				aJob = j
				break
			}
		}
		if aJob == nil {
			t.Fatal("no job addressed to redirected printer")
		}

		done, err := f.engine.ProcessPrintJob(ctx, testScope, aJob.ID)
		if err != nil {
			t.Fatal(err)
		}
		if done.Status != printing.JobPrinted {
			t.Fatalf("job status = %s, want printed", done.Status)
		}
		if len(f.deliverer.delivered) != 1 || f.deliverer.delivered[0] != "Backup" {
			t.Fatalf("delivered to %v, want [Backup]", f.deliverer.delivered)
		}
	})

	t.Run("CircularRedirectRejected", func(t *testing.T) {
		f := newFixture(t)
		a, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "A"})
		if err != nil {
			t.Fatal(err)
		}
		b, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "B"})
		if err != nil {
			t.Fatal(err)
		}

		if _, err := f.engine.RedirectPrinter(ctx, testScope, a.ID, b.ID); err != nil {
			t.Fatal(err)
		}
		_, err = f.engine.RedirectPrinter(ctx, testScope, b.ID, a.ID)
		if !errors.Is(err, brigade.ErrCircularRedirect) {
			t.Fatalf("err = %v, want ErrCircularRedirect", err)
		}

		// Self-redirect is the degenerate cycle.
		_, err = f.engine.RedirectPrinter(ctx, testScope, a.ID, a.ID)
		if !errors.Is(err, brigade.ErrCircularRedirect) {
			t.Fatalf("self redirect err = %v, want ErrCircularRedirect", err)
		}
	})
}

func TestReprint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "Kitchen"})
	if err != nil {
		t.Fatal(err)
	}
	o := f.openOrder(t)
	if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
		t.Fatal(err)
	}

	original, err := f.engine.ListPrintJobs(ctx, testScope, o.ID)
	if err != nil {
		t.Fatal(err)
	}

	reprinted, err := f.engine.ReprintOrder(ctx, testScope, o.ID, p.ID)
	if err != nil {
		t.Fatalf("reprint: %v", err)
	}
	if len(reprinted) != 2 {
		t.Fatalf("reprint jobs = %d, want 2", len(reprinted))
	}

	// Reprint keys never collide with the originals.
	seen := make(map[string]bool)
	for _, j := range original {
		seen[j.DedupeKey] = true
	}
	for _, j := range reprinted {
		if seen[j.DedupeKey] {
			t.Fatalf("reprint reused dedupe key %s", j.DedupeKey)
		}
	}

	t.Run("DeniedWithoutPermission", func(t *testing.T) {
		denied := brigade.AuthorizerFunc(func(_ context.Context, _ brigade.Scope, _ string) (bool, error) {
			return false, nil
		})
		f2 := newFixture(t, brigade.WithAuthorizer(denied))
		o2 := f2.openOrder(t)
		p2, err := f2.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{SiteID: "site_1", Name: "Kitchen"})
		if err != nil {
			t.Fatal(err)
		}

		_, err = f2.engine.ReprintOrder(ctx, testScope, o2.ID, p2.ID)
		if !brigade.IsPermissionDenied(err) {
			t.Fatalf("err = %v, want permission denied", err)
		}
	})
}

func TestCashSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("CashPaymentRecordsSale", func(t *testing.T) {
		f := newFixture(t)
		reg, err := f.engine.CreateCashRegister(ctx, testScope, "site_1", "Front Till")
		if err != nil {
			t.Fatal(err)
		}
		sess, err := f.engine.OpenCashSession(ctx, testScope, reg.ID, types.USD(10000))
		if err != nil {
			t.Fatal(err)
		}

		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(2500),
			Method:         payment.MethodCash,
			IdempotencyKey: "cash-1",
		}); err != nil {
			t.Fatal(err)
		}

		movements, err := f.engine.ListCashMovements(ctx, testScope, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		var sales int
		for _, m := range movements {
			if m.Type == cash.MovementSale {
				sales++
				if m.Amount.Amount != 2500 {
					t.Fatalf("sale amount = %d, want 2500", m.Amount.Amount)
				}
				if m.OrderID != o.ID {
					t.Fatalf("sale movement order = %s, want %s", m.OrderID, o.ID)
				}
			}
		}
		if sales != 1 {
			t.Fatalf("sale movements = %d, want 1", sales)
		}

		got, err := f.store.GetCashSession(ctx, testScope.TenantID, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.ExpectedAmount.Amount != 12500 {
			t.Fatalf("expected amount = %d, want 12500", got.ExpectedAmount.Amount)
		}
	})

	t.Run("SaleRecordingRetriesLostBumpRace", func(t *testing.T) {
		// Another movement lands between the recorder's session read and
		// its expected-amount write; the recorder must absorb the
		// conflict and record exactly one sale on the fresh session.
		inner := memory.New()
		cs := &conflictStore{Store: inner}
		eng := brigade.New(cs,
			brigade.WithCatalog(testCatalog()),
			brigade.WithAuthorizer(allowAll()),
			brigade.WithPrintDeliverer(&recordingDeliverer{}),
		)
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}

		reg, err := eng.CreateCashRegister(ctx, testScope, "site_1", "Front Till")
		if err != nil {
			t.Fatal(err)
		}
		sess, err := eng.OpenCashSession(ctx, testScope, reg.ID, types.USD(10000))
		if err != nil {
			t.Fatal(err)
		}

		o, err := eng.CreateOrder(ctx, testScope, brigade.CreateOrderRequest{
			SiteID: "site_1", Type: order.TypeDineIn, Currency: "usd",
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := eng.AddLine(ctx, testScope, brigade.AddLineRequest{
			OrderID: o.ID, ItemID: "itm_fries", Quantity: 1,
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := eng.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}

		cs.sessionHook = func() {
			s, err := inner.GetCashSession(ctx, testScope.TenantID, sess.ID)
			if err != nil {
				t.Fatalf("race read: %v", err)
			}
			s.ExpectedAmount = s.ExpectedAmount.Add(types.USD(100))
			s.Touch()
			if err := inner.UpdateCashSession(ctx, s); err != nil {
				t.Fatalf("race write: %v", err)
			}
		}

		if _, err := eng.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(500),
			Method:         payment.MethodCash,
			IdempotencyKey: "cash-race",
		}); err != nil {
			t.Fatalf("payment: %v", err)
		}

		got, err := inner.GetCashSession(ctx, testScope.TenantID, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.ExpectedAmount.Amount != 10600 {
			t.Fatalf("expected amount = %d, want 10600", got.ExpectedAmount.Amount)
		}

		movements, err := eng.ListCashMovements(ctx, testScope, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		var sales int
		for _, m := range movements {
			if m.Type == cash.MovementSale {
				sales++
			}
		}
		if sales != 1 {
			t.Fatalf("sale movements = %d, want 1", sales)
		}
	})

	t.Run("CardPaymentRecordsNothing", func(t *testing.T) {
		f := newFixture(t)
		reg, err := f.engine.CreateCashRegister(ctx, testScope, "site_1", "Front Till")
		if err != nil {
			t.Fatal(err)
		}
		sess, err := f.engine.OpenCashSession(ctx, testScope, reg.ID, types.USD(10000))
		if err != nil {
			t.Fatal(err)
		}

		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(2500),
			Method:         payment.MethodCard,
			IdempotencyKey: "card-1",
		}); err != nil {
			t.Fatal(err)
		}

		movements, err := f.engine.ListCashMovements(ctx, testScope, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, m := range movements {
			if m.Type == cash.MovementSale {
				t.Fatal("card payment produced a sale movement")
			}
		}
	})

	t.Run("NoOpenSessionIsNotFatal", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}

		// No register, no session: the cash payment still succeeds and
		// the order still auto-closes.
		if _, err := f.engine.ProcessPayment(ctx, testScope, brigade.ProcessPaymentRequest{
			OrderID:        o.ID,
			Amount:         types.USD(2500),
			Method:         payment.MethodCash,
			IdempotencyKey: "cash-orphan",
		}); err != nil {
			t.Fatalf("payment with no session: %v", err)
		}

		got, err := f.engine.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != order.StatusClosed {
			t.Fatalf("order status = %s, want closed", got.Status)
		}
	})

	t.Run("SecondOpenRejected", func(t *testing.T) {
		f := newFixture(t)
		reg, err := f.engine.CreateCashRegister(ctx, testScope, "site_1", "Front Till")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.OpenCashSession(ctx, testScope, reg.ID, types.USD(5000)); err != nil {
			t.Fatal(err)
		}
		_, err = f.engine.OpenCashSession(ctx, testScope, reg.ID, types.USD(5000))
		if !errors.Is(err, brigade.ErrSessionOpen) {
			t.Fatalf("err = %v, want ErrSessionOpen", err)
		}
	})

	t.Run("CloseComputesDifference", func(t *testing.T) {
		f := newFixture(t)
		reg, err := f.engine.CreateCashRegister(ctx, testScope, "site_1", "Front Till")
		if err != nil {
			t.Fatal(err)
		}
		sess, err := f.engine.OpenCashSession(ctx, testScope, reg.ID, types.USD(10000))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.engine.RecordCashMovement(ctx, testScope, sess.ID, cash.MovementWithdrawal, types.USD(2000), "bank drop"); err != nil {
			t.Fatal(err)
		}

		closed, err := f.engine.CloseCashSession(ctx, testScope, sess.ID, types.USD(7900))
		if err != nil {
			t.Fatal(err)
		}
		if closed.ExpectedAmount.Amount != 8000 {
			t.Fatalf("expected = %d, want 8000", closed.ExpectedAmount.Amount)
		}
		if closed.Difference.Amount != -100 {
			t.Fatalf("difference = %d, want -100", closed.Difference.Amount)
		}

		// A closed session takes no more movements.
		_, err = f.engine.RecordCashMovement(ctx, testScope, sess.ID, cash.MovementDeposit, types.USD(100), "late")
		if !errors.Is(err, brigade.ErrSessionNotOpen) {
			t.Fatalf("err = %v, want ErrSessionNotOpen", err)
		}
	})
}

// conflictStore wraps a store and fires one-shot hooks at read points,
// simulating a concurrent writer landing mid-operation.
type conflictStore struct {
	store.Store
	discountHook func() // before ListDiscounts (inside total recompute)
	sessionHook  func() // after GetOpenCashSession returns a stale copy
}

func (s *conflictStore) ListDiscounts(ctx context.Context, tenantID string, orderID id.OrderID) ([]*order.Discount, error) {
	if h := s.discountHook; h != nil {
		s.discountHook = nil
		h()
	}
	return s.Store.ListDiscounts(ctx, tenantID, orderID)
}

func (s *conflictStore) GetOpenCashSession(ctx context.Context, tenantID string, registerID id.CashRegisterID) (*cash.Session, error) {
	sess, err := s.Store.GetOpenCashSession(ctx, tenantID, registerID)
	if err == nil {
		if h := s.sessionHook; h != nil {
			s.sessionHook = nil
			h()
		}
	}
	return sess, err
}

func TestConflictRejectionLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*brigade.Engine, *memory.Store, *conflictStore) {
		t.Helper()
		inner := memory.New()
		cs := &conflictStore{Store: inner}
		eng := brigade.New(cs,
			brigade.WithCatalog(testCatalog()),
			brigade.WithAuthorizer(allowAll()),
			brigade.WithPrintDeliverer(&recordingDeliverer{}),
		)
		if err := eng.Start(ctx); err != nil {
			t.Fatalf("start engine: %v", err)
		}
		return eng, inner, cs
	}

	// armBump makes the next total recompute lose its version race.
	armBump := func(t *testing.T, inner *memory.Store, cs *conflictStore, orderID id.OrderID) {
		t.Helper()
		cs.discountHook = func() {
			o, err := inner.GetOrder(ctx, testScope.TenantID, orderID)
			if err != nil {
				t.Fatalf("bump read: %v", err)
			}
			o.Touch()
			if err := inner.UpdateOrder(ctx, o); err != nil {
				t.Fatalf("bump write: %v", err)
			}
		}
	}

	newOrderWithFries := func(t *testing.T, eng *brigade.Engine) *order.Order {
		t.Helper()
		o, err := eng.CreateOrder(ctx, testScope, brigade.CreateOrderRequest{
			SiteID: "site_1", Type: order.TypeDineIn, Currency: "usd",
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := eng.AddLine(ctx, testScope, brigade.AddLineRequest{
			OrderID: o.ID, ItemID: "itm_fries", Quantity: 1,
		}); err != nil {
			t.Fatal(err)
		}
		return o
	}

	t.Run("AddLineLeavesNoOrphanLine", func(t *testing.T) {
		eng, inner, cs := setup(t)
		o := newOrderWithFries(t, eng)

		armBump(t, inner, cs, o.ID)
		_, err := eng.AddLine(ctx, testScope, brigade.AddLineRequest{
			OrderID: o.ID, ItemID: "itm_burger", Quantity: 2,
		})
		if !errors.Is(err, brigade.ErrVersionConflict) {
			t.Fatalf("err = %v, want ErrVersionConflict", err)
		}

		lines, err := eng.ListLines(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(lines) != 1 {
			t.Fatalf("lines after rejected AddLine = %d, want 1", len(lines))
		}

		// A clean retry adds the item exactly once.
		if _, err := eng.AddLine(ctx, testScope, brigade.AddLineRequest{
			OrderID: o.ID, ItemID: "itm_burger", Quantity: 2,
		}); err != nil {
			t.Fatalf("retry: %v", err)
		}
		got, err := eng.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Total.Amount != 2500 {
			t.Fatalf("total after retry = %d, want 2500", got.Total.Amount)
		}
	})

	t.Run("UpdateLineRevertsTheLine", func(t *testing.T) {
		eng, inner, cs := setup(t)
		o := newOrderWithFries(t, eng)
		lines, err := eng.ListLines(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}

		armBump(t, inner, cs, o.ID)
		_, err = eng.UpdateLine(ctx, testScope, brigade.UpdateLineRequest{
			LineID: lines[0].ID, Quantity: 5,
		})
		if !errors.Is(err, brigade.ErrVersionConflict) {
			t.Fatalf("err = %v, want ErrVersionConflict", err)
		}

		l, err := inner.GetLine(ctx, testScope.TenantID, lines[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if l.Quantity != 1 {
			t.Fatalf("quantity after rejected update = %d, want 1", l.Quantity)
		}
	})

	t.Run("ApplyDiscountLeavesNoOrphanDiscount", func(t *testing.T) {
		eng, inner, cs := setup(t)
		o := newOrderWithFries(t, eng)

		armBump(t, inner, cs, o.ID)
		_, err := eng.ApplyDiscount(ctx, testScope, brigade.DiscountRequest{
			OrderID:    o.ID,
			Type:       order.DiscountPercentage,
			Percentage: 10,
			Reason:     "regular",
		})
		if !errors.Is(err, brigade.ErrVersionConflict) {
			t.Fatalf("err = %v, want ErrVersionConflict", err)
		}

		discounts, err := inner.ListDiscounts(ctx, testScope.TenantID, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(discounts) != 0 {
			t.Fatalf("discounts after rejected apply = %d, want 0", len(discounts))
		}

		got, err := eng.GetOrder(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Total.Amount != 500 {
			t.Fatalf("total after rejected apply = %d, want 500", got.Total.Amount)
		}
	})

	t.Run("VoidLineRevertsTheVoid", func(t *testing.T) {
		eng, inner, cs := setup(t)
		o := newOrderWithFries(t, eng)
		if _, err := eng.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		lines, err := eng.ListLines(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}

		armBump(t, inner, cs, o.ID)
		err = eng.VoidLine(ctx, testScope, lines[0].ID, "spill", true)
		if !errors.Is(err, brigade.ErrVersionConflict) {
			t.Fatalf("err = %v, want ErrVersionConflict", err)
		}

		l, err := inner.GetLine(ctx, testScope.TenantID, lines[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if l.Status != order.LineStatusConfirmed {
			t.Fatalf("line status after rejected void = %s, want confirmed", l.Status)
		}
		cons, err := inner.ListConsumptionsByLine(ctx, testScope.TenantID, l.ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range cons {
			if c.VoidedAt != nil {
				t.Fatalf("consumption %s voided despite rejected void", c.ID)
			}
		}
	})
}

func TestVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.openOrder(t)

	// Two operators read the same version.
	first, err := f.store.GetOrder(ctx, testScope.TenantID, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.store.GetOrder(ctx, testScope.TenantID, o.ID)
	if err != nil {
		t.Fatal(err)
	}

	first.TableID = "table_2"
	first.Touch()
	if err := f.store.UpdateOrder(ctx, first); err != nil {
		t.Fatalf("first writer: %v", err)
	}

	second.TableID = "table_3"
	second.Touch()
	err = f.store.UpdateOrder(ctx, second)
	if !errors.Is(err, brigade.ErrVersionConflict) {
		t.Fatalf("second writer err = %v, want ErrVersionConflict", err)
	}
	if !brigade.IsRetryable(err) {
		t.Fatal("version conflict should be retryable")
	}
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.openOrder(t)

	other := brigade.Scope{TenantID: "tenant_2", ActorID: "operator_9"}
	_, err := f.engine.GetOrder(ctx, other, o.ID)
	if !brigade.IsNotFound(err) {
		t.Fatalf("cross-tenant read err = %v, want not found", err)
	}
}

func TestVoidConfirmedLine(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresElevation", func(t *testing.T) {
		denied := brigade.AuthorizerFunc(func(_ context.Context, _ brigade.Scope, perm string) (bool, error) {
			return perm != brigade.PermVoidAfterSubtotal, nil
		})
		f := newFixture(t, brigade.WithAuthorizer(denied))
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		lines, err := f.engine.ListLines(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}

		err = f.engine.VoidLine(ctx, testScope, lines[0].ID, "spill", false)
		if !brigade.IsPermissionDenied(err) {
			t.Fatalf("err = %v, want permission denied", err)
		}
	})

	t.Run("VoidsConsumptionsAndRecordsWaste", func(t *testing.T) {
		f := newFixture(t)
		o := f.openOrder(t)
		if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
			t.Fatal(err)
		}
		lines, err := f.engine.ListLines(ctx, testScope, o.ID)
		if err != nil {
			t.Fatal(err)
		}

		if err := f.engine.VoidLine(ctx, testScope, lines[0].ID, "dropped the plate", true); err != nil {
			t.Fatalf("void confirmed line: %v", err)
		}

		cons, err := f.store.ListConsumptionsByLine(ctx, testScope.TenantID, lines[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range cons {
			if c.VoidedAt == nil {
				t.Fatalf("consumption %s not voided", c.ID)
			}
		}
	})
}

func TestUpdateLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.openOrder(t)

	lines, err := f.engine.ListLines(ctx, testScope, o.ID)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := f.engine.UpdateLine(ctx, testScope, brigade.UpdateLineRequest{
		LineID:   lines[0].ID,
		Quantity: 3,
		Notes:    "no onions",
	})
	if err != nil {
		t.Fatalf("update line: %v", err)
	}
	if updated.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", updated.Quantity)
	}

	// Confirmed lines are immutable.
	if _, err := f.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.engine.UpdateLine(ctx, testScope, brigade.UpdateLineRequest{
		LineID:   lines[0].ID,
		Quantity: 1,
	})
	if !errors.Is(err, brigade.ErrLineNotModifiable) {
		t.Fatalf("err = %v, want ErrLineNotModifiable", err)
	}
}

func TestEventOrdering(t *testing.T) {
	// The built-in print router runs before external subscribers, so an
	// external subscriber observing the confirmation can already see jobs.
	f0 := &fixture{store: memory.New(), deliverer: &recordingDeliverer{}}
	var jobsSeen int
	observer := subscriberFunc{
		name: "expo-display",
		onConfirmed: func(ctx context.Context, evt *event.OrderConfirmed) error {
			jobs, err := f0.store.ListPrintJobsByOrder(ctx, evt.TenantID, evt.OrderID)
			if err != nil {
				return err
			}
			jobsSeen = len(jobs)
			return nil
		},
	}

	f0.engine = brigade.New(f0.store,
		brigade.WithCatalog(testCatalog()),
		brigade.WithAuthorizer(allowAll()),
		brigade.WithPrintDeliverer(f0.deliverer),
		brigade.WithSubscriber(observer),
	)

	ctx := context.Background()
	if err := f0.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f0.engine.CreatePrinter(ctx, testScope, brigade.CreatePrinterRequest{
		SiteID: "site_1", Name: "Kitchen",
	}); err != nil {
		t.Fatal(err)
	}

	o := f0.openOrder(t)
	if _, err := f0.engine.ConfirmOrder(ctx, testScope, o.ID); err != nil {
		t.Fatal(err)
	}
	if jobsSeen != 2 {
		t.Fatalf("external subscriber saw %d jobs, want 2", jobsSeen)
	}
}

// subscriberFunc adapts closures to an event subscriber for tests.
type subscriberFunc struct {
	name        string
	onConfirmed func(context.Context, *event.OrderConfirmed) error
}

func (s subscriberFunc) Name() string { return s.name }

func (s subscriberFunc) OnOrderConfirmed(ctx context.Context, evt *event.OrderConfirmed) error {
	if s.onConfirmed == nil {
		return nil
	}
	return s.onConfirmed(ctx, evt)
}
