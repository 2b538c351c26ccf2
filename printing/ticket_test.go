package printing_test

import (
	"strings"
	"testing"
	"time"

	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/printing"
)

func TestDedupeKeys(t *testing.T) {
	orderID := id.NewOrderID()
	lineID := id.NewOrderLineID()
	printerID := id.NewPrinterID()

	t.Run("Stable", func(t *testing.T) {
		a := printing.DedupeKey(orderID, lineID, printerID)
		b := printing.DedupeKey(orderID, lineID, printerID)
		if a != b {
			t.Fatalf("same inputs produced %q and %q", a, b)
		}
	})

	t.Run("PrinterSensitive", func(t *testing.T) {
		other := id.NewPrinterID()
		if printing.DedupeKey(orderID, lineID, printerID) == printing.DedupeKey(orderID, lineID, other) {
			t.Fatal("keys for different printers collided")
		}
	})

	t.Run("ReprintNeverCollides", func(t *testing.T) {
		base := printing.DedupeKey(orderID, lineID, printerID)
		at := time.Now()
		r1 := printing.ReprintDedupeKey(orderID, lineID, printerID, at)
		r2 := printing.ReprintDedupeKey(orderID, lineID, printerID, at.Add(time.Nanosecond))
		if r1 == base || r2 == base {
			t.Fatal("reprint key collided with original")
		}
		if r1 == r2 {
			t.Fatal("reprint keys at different times collided")
		}
	})
}

func TestTicketRender(t *testing.T) {
	tk := &printing.Ticket{
		OrderID:   id.NewOrderID(),
		TableID:   "table_7",
		Zone:      "hot",
		CreatedAt: time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC),
		Lines: []printing.TicketLine{
			{ItemName: "Burger", Quantity: 2, Modifiers: []string{"cheese: extra"}, Notes: "no onions"},
			{ItemName: "Fries", Quantity: 1},
		},
	}

	out := tk.Render()
	for _, want := range []string{
		"ORDER " + tk.OrderID.String(),
		"TABLE table_7",
		"ZONE hot",
		"2025-06-01 18:30:00",
		" 2 x Burger",
		"+ cheese: extra",
		"> no onions",
		" 1 x Fries",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered ticket missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "REPRINT") {
		t.Fatal("non-reprint ticket carries reprint banner")
	}

	tk.Reprint = true
	if !strings.HasPrefix(tk.Render(), "*** REPRINT ***\n") {
		t.Fatal("reprint banner missing")
	}
}
