package audithook

// Action constants for audit events.
const (
	// Order actions
	ActionOrderConfirmed = "order.confirmed"

	// Payment actions
	ActionPaymentCompleted = "payment.completed"
)

// Resource constants for audit events.
const (
	ResourceOrder   = "order"
	ResourcePayment = "payment"
)

// Category constants for audit events.
const (
	CategoryFulfillment = "fulfillment"
	CategoryPayment     = "payment"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
