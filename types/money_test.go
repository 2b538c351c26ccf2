package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"USD", USD(2250), 2250, "usd", "$22.50"},
		{"EUR", EUR(1999), 1999, "eur", "€19.99"},
		{"GBP", GBP(9900), 9900, "gbp", "£99.00"},
		{"JPY", JPY(100), 100, "jpy", "¥100"},
		{"Zero USD", Zero("USD"), 0, "usd", "$0.00"},
		{"Zero EUR", Zero("EUR"), 0, "eur", "€0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return USD(100).Add(USD(200)) }, USD(300)},
		{"Subtract", func() Money { return USD(500).Subtract(USD(200)) }, USD(300)},
		{"Multiply", func() Money { return USD(1000).Multiply(2) }, USD(2000)},
		{"Percent", func() Money { return USD(2500).Percent(10) }, USD(250)},
		{"Percent rounds down", func() Money { return USD(999).Percent(10) }, USD(99)},
		{"Negate", func() Money { return USD(100).Negate() }, USD(-100)},
		{"ClampZero positive", func() Money { return USD(100).ClampZero() }, USD(100)},
		{"ClampZero negative", func() Money { return USD(-100).ClampZero() }, USD(0)},
		{"Line times qty minus discount", func() Money {
			return USD(1000).Multiply(2).Add(USD(500)).Subtract(USD(2500).Percent(10))
		}, USD(2250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	// This should panic
	_ = USD(100).Add(EUR(100))
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name string
		a, b Money
		less bool
		gte  bool
	}{
		{"Equal", USD(100), USD(100), false, true},
		{"Less", USD(50), USD(100), true, false},
		{"Greater", USD(200), USD(100), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThanOrEqual(tt.b); got != tt.gte {
				t.Errorf("GreaterThanOrEqual: got %v, want %v", got, tt.gte)
			}
		})
	}
}

func TestMoneyPredicates(t *testing.T) {
	if !USD(0).IsZero() || USD(1).IsZero() {
		t.Error("IsZero misreported")
	}
	if !USD(1).IsPositive() || USD(-1).IsPositive() {
		t.Error("IsPositive misreported")
	}
	if !USD(-1).IsNegative() || USD(1).IsNegative() {
		t.Error("IsNegative misreported")
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(USD(2250))
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Amount != 2250 || decoded.Currency != "usd" || decoded.Display != "$22.50" {
		t.Errorf("unexpected JSON round trip: %+v", decoded)
	}
}

func TestSum(t *testing.T) {
	got := Sum(USD(1000), USD(500), USD(750))
	if !got.Equal(USD(2250)) {
		t.Errorf("Sum: got %v, want %v", got, USD(2250))
	}
}

func TestVersioned(t *testing.T) {
	v := NewVersioned()
	if v.Version != 1 {
		t.Fatalf("initial version: got %d, want 1", v.Version)
	}
	v.Bump()
	if v.Version != 2 {
		t.Fatalf("bumped version: got %d, want 2", v.Version)
	}
}
