// Package id defines TypeID-based identity types for all Brigade entities.
//
// Every entity in Brigade uses a single ID struct with a prefix that
// identifies the entity type. IDs are K-sortable (UUIDv7-based), globally
// unique, and URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Brigade entity types.
const (
	PrefixOrder        Prefix = "ord"  // Order
	PrefixOrderLine    Prefix = "line" // Order line
	PrefixDiscount     Prefix = "dsc"  // Discount
	PrefixConsumption  Prefix = "cns"  // Consumption record
	PrefixWasteEntry   Prefix = "wst"  // Waste entry
	PrefixPayment      Prefix = "pay"  // Payment
	PrefixPrinter      Prefix = "prn"  // Printer
	PrefixPrintJob     Prefix = "pjob" // Print job
	PrefixCashRegister Prefix = "reg"  // Cash register
	PrefixCashSession  Prefix = "csh"  // Cash session
	PrefixCashMovement Prefix = "mov"  // Cash movement
)

// ID is the primary identifier type for all Brigade entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "ord_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// OrderID is a type-safe identifier for orders (prefix: "ord").
type OrderID = ID

// OrderLineID is a type-safe identifier for order lines (prefix: "line").
type OrderLineID = ID

// DiscountID is a type-safe identifier for discounts (prefix: "dsc").
type DiscountID = ID

// ConsumptionID is a type-safe identifier for consumption records (prefix: "cns").
type ConsumptionID = ID

// WasteEntryID is a type-safe identifier for waste entries (prefix: "wst").
type WasteEntryID = ID

// PaymentID is a type-safe identifier for payments (prefix: "pay").
type PaymentID = ID

// PrinterID is a type-safe identifier for printers (prefix: "prn").
type PrinterID = ID

// PrintJobID is a type-safe identifier for print jobs (prefix: "pjob").
type PrintJobID = ID

// CashRegisterID is a type-safe identifier for cash registers (prefix: "reg").
type CashRegisterID = ID

// CashSessionID is a type-safe identifier for cash sessions (prefix: "csh").
type CashSessionID = ID

// CashMovementID is a type-safe identifier for cash movements (prefix: "mov").
type CashMovementID = ID

// AnyID is a type alias that accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewOrderID generates a new unique order ID.
func NewOrderID() ID { return New(PrefixOrder) }

// NewOrderLineID generates a new unique order line ID.
func NewOrderLineID() ID { return New(PrefixOrderLine) }

// NewDiscountID generates a new unique discount ID.
func NewDiscountID() ID { return New(PrefixDiscount) }

// NewConsumptionID generates a new unique consumption ID.
func NewConsumptionID() ID { return New(PrefixConsumption) }

// NewWasteEntryID generates a new unique waste entry ID.
func NewWasteEntryID() ID { return New(PrefixWasteEntry) }

// NewPaymentID generates a new unique payment ID.
func NewPaymentID() ID { return New(PrefixPayment) }

// NewPrinterID generates a new unique printer ID.
func NewPrinterID() ID { return New(PrefixPrinter) }

// NewPrintJobID generates a new unique print job ID.
func NewPrintJobID() ID { return New(PrefixPrintJob) }

// NewCashRegisterID generates a new unique cash register ID.
func NewCashRegisterID() ID { return New(PrefixCashRegister) }

// NewCashSessionID generates a new unique cash session ID.
func NewCashSessionID() ID { return New(PrefixCashSession) }

// NewCashMovementID generates a new unique cash movement ID.
func NewCashMovementID() ID { return New(PrefixCashMovement) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseOrderID parses a string and validates the "ord" prefix.
func ParseOrderID(s string) (ID, error) { return ParseWithPrefix(s, PrefixOrder) }

// ParseOrderLineID parses a string and validates the "line" prefix.
func ParseOrderLineID(s string) (ID, error) { return ParseWithPrefix(s, PrefixOrderLine) }

// ParseDiscountID parses a string and validates the "dsc" prefix.
func ParseDiscountID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDiscount) }

// ParseConsumptionID parses a string and validates the "cns" prefix.
func ParseConsumptionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixConsumption) }

// ParseWasteEntryID parses a string and validates the "wst" prefix.
func ParseWasteEntryID(s string) (ID, error) { return ParseWithPrefix(s, PrefixWasteEntry) }

// ParsePaymentID parses a string and validates the "pay" prefix.
func ParsePaymentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPayment) }

// ParsePrinterID parses a string and validates the "prn" prefix.
func ParsePrinterID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPrinter) }

// ParsePrintJobID parses a string and validates the "pjob" prefix.
func ParsePrintJobID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPrintJob) }

// ParseCashRegisterID parses a string and validates the "reg" prefix.
func ParseCashRegisterID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCashRegister) }

// ParseCashSessionID parses a string and validates the "csh" prefix.
func ParseCashSessionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCashSession) }

// ParseCashMovementID parses a string and validates the "mov" prefix.
func ParseCashMovementID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCashMovement) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
