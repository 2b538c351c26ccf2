package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/brigade/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"OrderID", id.NewOrderID, "ord_"},
		{"OrderLineID", id.NewOrderLineID, "line_"},
		{"DiscountID", id.NewDiscountID, "dsc_"},
		{"ConsumptionID", id.NewConsumptionID, "cns_"},
		{"WasteEntryID", id.NewWasteEntryID, "wst_"},
		{"PaymentID", id.NewPaymentID, "pay_"},
		{"PrinterID", id.NewPrinterID, "prn_"},
		{"PrintJobID", id.NewPrintJobID, "pjob_"},
		{"CashRegisterID", id.NewCashRegisterID, "reg_"},
		{"CashSessionID", id.NewCashSessionID, "csh_"},
		{"CashMovementID", id.NewCashMovementID, "mov_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixOrder)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixOrder {
		t.Errorf("expected prefix %q, got %q", id.PrefixOrder, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"OrderID", id.NewOrderID, id.ParseOrderID},
		{"OrderLineID", id.NewOrderLineID, id.ParseOrderLineID},
		{"DiscountID", id.NewDiscountID, id.ParseDiscountID},
		{"ConsumptionID", id.NewConsumptionID, id.ParseConsumptionID},
		{"WasteEntryID", id.NewWasteEntryID, id.ParseWasteEntryID},
		{"PaymentID", id.NewPaymentID, id.ParsePaymentID},
		{"PrinterID", id.NewPrinterID, id.ParsePrinterID},
		{"PrintJobID", id.NewPrintJobID, id.ParsePrintJobID},
		{"CashRegisterID", id.NewCashRegisterID, id.ParseCashRegisterID},
		{"CashSessionID", id.NewCashSessionID, id.ParseCashSessionID},
		{"CashMovementID", id.NewCashMovementID, id.ParseCashMovementID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.newFn()
			parsed, err := tt.parseFn(orig.String())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if parsed.String() != orig.String() {
				t.Errorf("round trip mismatch: %q != %q", parsed.String(), orig.String())
			}
		})
	}
}

func TestParseWrongPrefix(t *testing.T) {
	orderID := id.NewOrderID()
	if _, err := id.ParsePaymentID(orderID.String()); err == nil {
		t.Error("expected error parsing order ID as payment ID")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{"", "not-a-typeid", "ord_!!!"}
	for _, s := range tests {
		if _, err := id.Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestNilID(t *testing.T) {
	var n id.ID
	if !n.IsNil() {
		t.Error("zero value should be nil")
	}
	if n.String() != "" {
		t.Errorf("nil ID string: got %q, want empty", n.String())
	}

	v, err := n.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("nil ID Value: got %v, want nil", v)
	}
}

func TestTextRoundTrip(t *testing.T) {
	orig := id.NewPrintJobID()
	text, err := orig.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if decoded.String() != orig.String() {
		t.Errorf("text round trip mismatch: %q != %q", decoded.String(), orig.String())
	}
}

func TestScan(t *testing.T) {
	orig := id.NewCashSessionID()

	var fromString id.ID
	if err := fromString.Scan(orig.String()); err != nil {
		t.Fatal(err)
	}
	if fromString.String() != orig.String() {
		t.Errorf("scan string mismatch: %q != %q", fromString.String(), orig.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if !fromNil.IsNil() {
		t.Error("scanning nil should yield the nil ID")
	}

	var fromInt id.ID
	if err := fromInt.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
