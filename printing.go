package brigade

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/id"
	"github.com/xraph/brigade/order"
	"github.com/xraph/brigade/printing"
	"github.com/xraph/brigade/types"
)

// printRouter is the built-in OrderConfirmed subscriber that fans each
// confirmed line out to every printer registered at the order's site.
type printRouter struct {
	engine *Engine
}

func (r *printRouter) Name() string { return "brigade.print-router" }

// OnOrderConfirmed creates one pending print job per (line, printer). Jobs
// are deduplicated by key, so event redelivery creates nothing new. Any
// store failure propagates and aborts the confirmation.
func (r *printRouter) OnOrderConfirmed(ctx context.Context, evt *event.OrderConfirmed) error {
	printers, err := r.engine.store.ListPrinters(ctx, evt.TenantID, evt.SiteID)
	if err != nil {
		return err
	}

	for _, line := range evt.Lines {
		for _, p := range printers {
			key := printing.DedupeKey(evt.OrderID, line.LineID, p.ID)

			if _, err := r.engine.store.GetPrintJobByDedupeKey(ctx, evt.TenantID, key); err == nil {
				continue
			} else if !IsNotFound(err) {
				return err
			}

			ticket := &printing.Ticket{
				OrderID:   evt.OrderID,
				TableID:   evt.TableID,
				Zone:      p.Zone,
				CreatedAt: evt.OccurredAt,
				Lines: []printing.TicketLine{{
					ItemName:  line.ItemName,
					Quantity:  line.Quantity,
					Modifiers: line.Modifiers,
					Notes:     line.Notes,
				}},
			}

			job := &printing.Job{
				Entity:    types.NewEntity(),
				ID:        id.NewPrintJobID(),
				TenantID:  evt.TenantID,
				OrderID:   evt.OrderID,
				LineID:    line.LineID,
				PrinterID: p.ID,
				Content:   ticket.Render(),
				Status:    printing.JobPending,
				DedupeKey: key,
			}
			if err := r.engine.store.CreatePrintJob(ctx, job); err != nil {
				return err
			}
		}
	}

	return nil
}

// CreatePrinterRequest carries the inputs for registering a printer.
type CreatePrinterRequest struct {
	SiteID string
	Name   string
	Zone   string
}

// CreatePrinter registers a printer at a site in normal status.
func (e *Engine) CreatePrinter(ctx context.Context, scope Scope, req CreatePrinterRequest) (*printing.Printer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if req.SiteID == "" {
		return nil, ValidationError{Field: "site_id", Message: "is required"}
	}
	if req.Name == "" {
		return nil, ValidationError{Field: "name", Message: "is required"}
	}

	p := &printing.Printer{
		Entity:   types.NewEntity(),
		ID:       id.NewPrinterID(),
		TenantID: scope.TenantID,
		SiteID:   req.SiteID,
		Name:     req.Name,
		Zone:     req.Zone,
		Status:   printing.PrinterNormal,
	}

	if err := e.store.CreatePrinter(ctx, p); err != nil {
		return nil, err
	}

	e.logger.Info("printer created", "printer_id", p.ID, "site_id", p.SiteID, "name", p.Name)

	return p, nil
}

// ListPrinters lists the printers registered at a site.
func (e *Engine) ListPrinters(ctx context.Context, scope Scope, siteID string) ([]*printing.Printer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return e.store.ListPrinters(ctx, scope.TenantID, siteID)
}

// UpdatePrinterStatus sets a printer's status. Redirect status must be set
// through RedirectPrinter so the target is validated; leaving redirect
// clears the stored target. Changes apply to subsequent job processing
// only.
func (e *Engine) UpdatePrinterStatus(ctx context.Context, scope Scope, printerID id.PrinterID, status printing.PrinterStatus) (*printing.Printer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ValidationError{Field: "status", Message: fmt.Sprintf("unknown printer status %q", status)}
	}
	if status == printing.PrinterRedirect {
		return nil, ValidationError{Field: "status", Message: "use RedirectPrinter to set a redirect"}
	}

	p, err := e.store.GetPrinter(ctx, scope.TenantID, printerID)
	if err != nil {
		return nil, err
	}

	p.Status = status
	p.RedirectTarget = id.Nil
	p.Touch()

	if err := e.store.UpdatePrinter(ctx, p); err != nil {
		return nil, err
	}

	e.logger.Info("printer status updated", "printer_id", p.ID, "status", p.Status)

	return p, nil
}

// RedirectPrinter points a printer at a redirect target. The whole redirect
// chain reachable from the target is walked with a visited set, so any
// cycle back to the printer, however long, is rejected with
// ErrCircularRedirect.
func (e *Engine) RedirectPrinter(ctx context.Context, scope Scope, printerID, targetID id.PrinterID) (*printing.Printer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if printerID == targetID {
		return nil, fmt.Errorf("%w: printer %s cannot redirect to itself", ErrCircularRedirect, printerID)
	}

	p, err := e.store.GetPrinter(ctx, scope.TenantID, printerID)
	if err != nil {
		return nil, err
	}

	visited := map[id.PrinterID]bool{p.ID: true}
	next := targetID
	for !next.IsNil() {
		if visited[next] {
			return nil, fmt.Errorf("%w: chain from %s revisits %s", ErrCircularRedirect, printerID, next)
		}
		visited[next] = true

		t, err := e.store.GetPrinter(ctx, scope.TenantID, next)
		if err != nil {
			return nil, err
		}
		if t.Status != printing.PrinterRedirect {
			break
		}
		next = t.RedirectTarget
	}

	p.Status = printing.PrinterRedirect
	p.RedirectTarget = targetID
	p.Touch()

	if err := e.store.UpdatePrinter(ctx, p); err != nil {
		return nil, err
	}

	e.logger.Info("printer redirected", "printer_id", p.ID, "target_id", targetID)

	return p, nil
}

// resolvePrinter follows the redirect chain from a printer to the effective
// delivery target. The visited set bounds the walk; a cycle that slipped
// past configuration checks surfaces as ErrCircularRedirect rather than an
// infinite chase.
func (e *Engine) resolvePrinter(ctx context.Context, tenantID string, p *printing.Printer) (*printing.Printer, error) {
	visited := map[id.PrinterID]bool{}
	for p.Status == printing.PrinterRedirect && !p.RedirectTarget.IsNil() {
		if visited[p.ID] {
			return nil, fmt.Errorf("%w: chain revisits %s", ErrCircularRedirect, p.ID)
		}
		visited[p.ID] = true

		t, err := e.store.GetPrinter(ctx, tenantID, p.RedirectTarget)
		if err != nil {
			return nil, err
		}
		p = t
	}
	return p, nil
}

// ProcessPrintJob resolves the job's effective target printer and attempts
// delivery. Ignored targets mark the job skipped; wait targets leave it
// pending; otherwise the delivery outcome is recorded as printed or
// failed. Processing a job that is no longer pending is a no-op.
func (e *Engine) ProcessPrintJob(ctx context.Context, scope Scope, jobID id.PrintJobID) (*printing.Job, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	job, err := e.store.GetPrintJob(ctx, scope.TenantID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != printing.JobPending {
		return job, nil
	}

	addressed, err := e.store.GetPrinter(ctx, scope.TenantID, job.PrinterID)
	if err != nil {
		return nil, err
	}

	target, err := e.resolvePrinter(ctx, scope.TenantID, addressed)
	if err != nil {
		return nil, err
	}

	switch target.Status {
	case printing.PrinterIgnore:
		job.Status = printing.JobSkipped
		job.Touch()
		if err := e.store.UpdatePrintJob(ctx, job); err != nil {
			return nil, err
		}
		return job, nil
	case printing.PrinterWait:
		return job, nil
	}

	if e.deliverer == nil {
		return nil, ErrNoDeliverer
	}

	if err := e.deliverer.Deliver(ctx, target, job.Content); err != nil {
		e.logger.Warn("print delivery failed",
			"job_id", job.ID,
			"printer_id", target.ID,
			"error", err,
		)
		job.Status = printing.JobFailed
	} else {
		job.Status = printing.JobPrinted
	}
	job.Touch()

	if err := e.store.UpdatePrintJob(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// ReprintOrder creates fresh print jobs for an order's non-voided lines on
// one printer, bypassing the event bus. Each call uses time-suffixed dedupe
// keys, so reprints never deduplicate against the original or each other.
// Requires the reprint permission.
func (e *Engine) ReprintOrder(ctx context.Context, scope Scope, orderID id.OrderID, printerID id.PrinterID) ([]*printing.Job, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := e.authorize(ctx, scope, PermReprintDocument); err != nil {
		return nil, err
	}

	o, err := e.store.GetOrder(ctx, scope.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	p, err := e.store.GetPrinter(ctx, scope.TenantID, printerID)
	if err != nil {
		return nil, err
	}
	lines, err := e.store.ListLines(ctx, scope.TenantID, o.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var jobs []*printing.Job
	for _, l := range lines {
		if l.Status == order.LineStatusVoided {
			continue
		}

		ticket := &printing.Ticket{
			OrderID:   o.ID,
			TableID:   o.TableID,
			Zone:      p.Zone,
			Reprint:   true,
			CreatedAt: now,
			Lines: []printing.TicketLine{{
				ItemName:  l.ItemName,
				Quantity:  l.Quantity,
				Modifiers: flattenModifiers(l.Modifiers),
				Notes:     l.Notes,
			}},
		}

		job := &printing.Job{
			Entity:    types.NewEntity(),
			ID:        id.NewPrintJobID(),
			TenantID:  scope.TenantID,
			OrderID:   o.ID,
			LineID:    l.ID,
			PrinterID: p.ID,
			Content:   ticket.Render(),
			Status:    printing.JobPending,
			DedupeKey: printing.ReprintDedupeKey(o.ID, l.ID, p.ID, now),
		}
		if err := e.store.CreatePrintJob(ctx, job); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	e.logger.Info("order reprinted",
		"order_id", o.ID,
		"printer_id", p.ID,
		"jobs", len(jobs),
		"actor_id", scope.ActorID,
	)

	return jobs, nil
}

// TestPrinter delivers a short test ticket directly to the printer,
// bypassing job creation and redirect resolution.
func (e *Engine) TestPrinter(ctx context.Context, scope Scope, printerID id.PrinterID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if e.deliverer == nil {
		return ErrNoDeliverer
	}

	p, err := e.store.GetPrinter(ctx, scope.TenantID, printerID)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("*** TEST ***\nPRINTER %s\n%s\n", p.Name, time.Now().UTC().Format("2006-01-02 15:04:05"))

	return e.deliverer.Deliver(ctx, p, content)
}

// ListPrintJobs lists the print jobs created for an order.
func (e *Engine) ListPrintJobs(ctx context.Context, scope Scope, orderID id.OrderID) ([]*printing.Job, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return e.store.ListPrintJobsByOrder(ctx, scope.TenantID, orderID)
}
