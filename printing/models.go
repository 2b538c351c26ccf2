// Package printing defines the Print Routing Engine entities: printers and
// the print jobs routed to them.
package printing

import (
	"context"

	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/types"
)

// PrinterStatus controls how jobs addressed to a printer are handled.
type PrinterStatus string

const (
	// PrinterNormal prints jobs as addressed.
	PrinterNormal PrinterStatus = "normal"
	// PrinterWait holds jobs in pending until the printer recovers.
	PrinterWait PrinterStatus = "wait"
	// PrinterIgnore skips jobs; they are never printed.
	PrinterIgnore PrinterStatus = "ignore"
	// PrinterRedirect sends jobs to the redirect target instead.
	PrinterRedirect PrinterStatus = "redirect"
)

// Valid reports whether s is a known printer status.
func (s PrinterStatus) Valid() bool {
	switch s {
	case PrinterNormal, PrinterWait, PrinterIgnore, PrinterRedirect:
		return true
	}
	return false
}

// Printer is a physical ticket printer registered at a site. Status and
// redirect changes apply to subsequent job processing only, never
// retroactively to jobs already pending.
type Printer struct {
	types.Entity
	ID             id.PrinterID  `json:"id"`
	TenantID       string        `json:"tenant_id"`
	SiteID         string        `json:"site_id"`
	Name           string        `json:"name"`
	Zone           string        `json:"zone,omitempty"`
	Status         PrinterStatus `json:"status"`
	RedirectTarget id.PrinterID  `json:"redirect_target,omitempty"`
}

// JobStatus is the lifecycle state of a print job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobPrinted JobStatus = "printed"
	JobFailed  JobStatus = "failed"
	JobSkipped JobStatus = "skipped"
)

// Job is one rendered kitchen ticket addressed to one printer. The dedupe
// key is unique per tenant: redelivered confirmation events find the
// existing job and create nothing. Reprints carry time-suffixed keys so
// they never collide with the original.
type Job struct {
	types.Entity
	ID        id.PrintJobID  `json:"id"`
	TenantID  string         `json:"tenant_id"`
	OrderID   id.OrderID     `json:"order_id"`
	LineID    id.OrderLineID `json:"line_id,omitempty"`
	PrinterID id.PrinterID   `json:"printer_id"`
	Content   string         `json:"content"`
	Status    JobStatus      `json:"status"`
	DedupeKey string         `json:"dedupe_key"`
}

// Deliverer is the physical transport collaborator. Implementations push
// rendered ticket content to the wire; Brigade only records the outcome.
type Deliverer interface {
	Deliver(ctx context.Context, printer *Printer, content string) error
}

// DelivererFunc adapts a plain function to a Deliverer.
type DelivererFunc func(ctx context.Context, printer *Printer, content string) error

// Deliver implements Deliverer.
func (f DelivererFunc) Deliver(ctx context.Context, printer *Printer, content string) error {
	return f(ctx, printer, content)
}

// Store is the persistence contract for printers and jobs.
// GetPrintJobByDedupeKey is the idempotency check for event redelivery.
type Store interface {
	CreatePrinter(ctx context.Context, p *Printer) error
	GetPrinter(ctx context.Context, tenantID string, printerID id.PrinterID) (*Printer, error)
	ListPrinters(ctx context.Context, tenantID, siteID string) ([]*Printer, error)
	UpdatePrinter(ctx context.Context, p *Printer) error

	CreatePrintJob(ctx context.Context, j *Job) error
	GetPrintJob(ctx context.Context, tenantID string, jobID id.PrintJobID) (*Job, error)
	GetPrintJobByDedupeKey(ctx context.Context, tenantID, key string) (*Job, error)
	ListPrintJobsByOrder(ctx context.Context, tenantID string, orderID id.OrderID) ([]*Job, error)
	UpdatePrintJob(ctx context.Context, j *Job) error
}
