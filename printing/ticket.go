package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/xraph/brigade/id"
)

// DedupeKey builds the idempotency key for a job created by order
// confirmation. It is a pure function of the order, line, and target
// printer, so redelivered events always map to the same key.
func DedupeKey(orderID id.OrderID, lineID id.OrderLineID, printerID id.PrinterID) string {
	return fmt.Sprintf("%s:%s:%s", orderID, lineID, printerID)
}

// ReprintDedupeKey builds a fresh key for an operator-requested reprint.
// The timestamp suffix guarantees the new job never collides with the
// original or an earlier reprint.
func ReprintDedupeKey(orderID id.OrderID, lineID id.OrderLineID, printerID id.PrinterID, at time.Time) string {
	return fmt.Sprintf("%s:%s:%s:reprint:%d", orderID, lineID, printerID, at.UnixNano())
}

// TicketLine is one line of a rendered kitchen ticket.
type TicketLine struct {
	ItemName  string
	Quantity  int64
	Modifiers []string
	Notes     string
}

// Ticket is the content handed to a Deliverer. Rendering is plain text;
// ESC/POS or other device framing is the deliverer's concern.
type Ticket struct {
	OrderID   id.OrderID
	TableID   string
	Zone      string
	Lines     []TicketLine
	Reprint   bool
	CreatedAt time.Time
}

// Render produces the printable ticket body.
func (t *Ticket) Render() string {
	var b strings.Builder
	if t.Reprint {
		b.WriteString("*** REPRINT ***\n")
	}
	fmt.Fprintf(&b, "ORDER %s\n", t.OrderID)
	if t.TableID != "" {
		fmt.Fprintf(&b, "TABLE %s\n", t.TableID)
	}
	if t.Zone != "" {
		fmt.Fprintf(&b, "ZONE %s\n", t.Zone)
	}
	fmt.Fprintf(&b, "%s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("--------------------------------\n")
	for _, l := range t.Lines {
		fmt.Fprintf(&b, "%2d x %s\n", l.Quantity, l.ItemName)
		for _, m := range l.Modifiers {
			fmt.Fprintf(&b, "     + %s\n", m)
		}
		if l.Notes != "" {
			fmt.Fprintf(&b, "     > %s\n", l.Notes)
		}
	}
	b.WriteString("--------------------------------\n")
	return b.String()
}
