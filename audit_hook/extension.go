// Package audithook bridges Brigade lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/brigade/event"
)

// Compile-time interface checks.
var (
	_ event.Subscriber         = (*Extension)(nil)
	_ event.OnOrderConfirmed   = (*Extension)(nil)
	_ event.OnPaymentCompleted = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Brigade lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements event.Subscriber.
func (e *Extension) Name() string { return "audit-hook" }

// OnOrderConfirmed implements event.OnOrderConfirmed.
func (e *Extension) OnOrderConfirmed(ctx context.Context, evt *event.OrderConfirmed) error {
	return e.record(ctx, ActionOrderConfirmed, SeverityInfo, OutcomeSuccess,
		ResourceOrder, evt.OrderID.String(), CategoryFulfillment, nil,
		"tenant_id", evt.TenantID,
		"site_id", evt.SiteID,
		"table_id", evt.TableID,
		"order_type", evt.OrderType,
		"line_count", len(evt.Lines),
	)
}

// OnPaymentCompleted implements event.OnPaymentCompleted.
func (e *Extension) OnPaymentCompleted(ctx context.Context, evt *event.PaymentCompleted) error {
	return e.record(ctx, ActionPaymentCompleted, SeverityInfo, OutcomeSuccess,
		ResourcePayment, evt.PaymentID.String(), CategoryPayment, nil,
		"tenant_id", evt.TenantID,
		"site_id", evt.SiteID,
		"order_id", evt.OrderID.String(),
		"amount", evt.Amount.Amount,
		"currency", evt.Amount.Currency,
		"method", evt.Method,
		"actor_id", evt.ActorID,
	)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
