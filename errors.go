package brigade

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("brigade: not found")
	ErrAlreadyExists = errors.New("brigade: already exists")
	ErrInvalidInput  = errors.New("brigade: invalid input")
	ErrForbidden     = errors.New("brigade: forbidden")

	// Concurrency errors
	ErrVersionConflict = errors.New("brigade: version conflict")

	// Order errors
	ErrOrderNotFound     = errors.New("brigade: order not found")
	ErrOrderNotOpen      = errors.New("brigade: order is not open")
	ErrOrderNotPayable   = errors.New("brigade: order is not payable")
	ErrOrderClosed       = errors.New("brigade: order is closed")
	ErrOrderVoided       = errors.New("brigade: order is voided")
	ErrLineNotFound      = errors.New("brigade: order line not found")
	ErrLineVoided        = errors.New("brigade: order line is voided")
	ErrLineNotModifiable = errors.New("brigade: order line is not modifiable")
	ErrNoPendingLines    = errors.New("brigade: order has no pending lines")
	ErrDiscountNotFound  = errors.New("brigade: discount not found")
	ErrInvalidDiscount   = errors.New("brigade: invalid discount")
	ErrInvalidQuantity   = errors.New("brigade: invalid quantity")
	ErrItemUnavailable   = errors.New("brigade: item unavailable")
	ErrCurrencyMismatch  = errors.New("brigade: currency mismatch")

	// Payment errors
	ErrPaymentNotFound  = errors.New("brigade: payment not found")
	ErrPaymentVoided    = errors.New("brigade: payment is voided")
	ErrInvalidPayMethod = errors.New("brigade: invalid payment method")

	// Printing errors
	ErrPrinterNotFound  = errors.New("brigade: printer not found")
	ErrPrintJobNotFound = errors.New("brigade: print job not found")
	ErrCircularRedirect = errors.New("brigade: circular printer redirect")
	ErrNoDeliverer      = errors.New("brigade: no print deliverer configured")
	ErrJobNotPending    = errors.New("brigade: print job is not pending")

	// Cash errors
	ErrRegisterNotFound = errors.New("brigade: cash register not found")
	ErrSessionNotFound  = errors.New("brigade: cash session not found")
	ErrSessionNotOpen   = errors.New("brigade: cash session is not open")
	ErrSessionOpen      = errors.New("brigade: register already has an open session")

	// Store errors
	ErrStoreNotReady     = errors.New("brigade: store not ready")
	ErrStoreClosed       = errors.New("brigade: store is closed")
	ErrTransactionFailed = errors.New("brigade: transaction failed")
	ErrMigrationFailed   = errors.New("brigade: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("brigade: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrLineNotFound) ||
		errors.Is(err, ErrDiscountNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrPrinterNotFound) ||
		errors.Is(err, ErrPrintJobNotFound) ||
		errors.Is(err, ErrRegisterNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsInvalidState returns true if the error is a state-machine violation,
// where the entity exists but the operation is illegal in its current state.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrOrderNotOpen) ||
		errors.Is(err, ErrOrderNotPayable) ||
		errors.Is(err, ErrOrderClosed) ||
		errors.Is(err, ErrOrderVoided) ||
		errors.Is(err, ErrLineVoided) ||
		errors.Is(err, ErrLineNotModifiable) ||
		errors.Is(err, ErrNoPendingLines) ||
		errors.Is(err, ErrPaymentVoided) ||
		errors.Is(err, ErrJobNotPending) ||
		errors.Is(err, ErrSessionNotOpen) ||
		errors.Is(err, ErrSessionOpen)
}

// IsConflict returns true if the error is an optimistic concurrency
// conflict; the caller should re-read and retry.
func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsPermissionDenied returns true if the error is an authorization failure.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidInput)
}

// IsRetryable returns true if the error is temporary and the operation can
// be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
