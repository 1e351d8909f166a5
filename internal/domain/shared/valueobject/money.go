package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	BRL Currency = "BRL" // Brazilian Real (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = BRL

// Money value object errors
var (
	ErrInvalidAmount    = shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	ErrCurrencyMismatch = shared.NewDomainError("CURRENCY_MISMATCH", "Cannot operate on different currencies")
)

// Money is a value object representing monetary amounts in integer minor
// units (cents). It is immutable - all operations return new Money instances.
type Money struct {
	cents    int64
	currency Currency
}

// NewMoney creates a new Money from an amount in cents
func NewMoney(cents int64, currency Currency) (Money, error) {
	if cents < 0 {
		return Money{}, ErrInvalidAmount
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{cents: cents, currency: currency}, nil
}

// NewMoneyBRL creates Money in BRL from an amount in cents
func NewMoneyBRL(cents int64) (Money, error) {
	return NewMoney(cents, BRL)
}

// MustMoneyBRL creates Money in BRL, panics on a negative amount.
// Intended for fixtures and constants known to be valid.
func MustMoneyBRL(cents int64) Money {
	m, err := NewMoneyBRL(cents)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromUnits creates Money from an amount in major units (e.g. reais).
// The amount is rounded to the nearest cent, ties away from zero.
func NewMoneyFromUnits(units float64, currency Currency) (Money, error) {
	cents := decimal.NewFromFloat(units).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
	return NewMoney(cents, currency)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{cents: 0, currency: currency}
}

// ZeroBRL returns a zero-value Money in BRL
func ZeroBRL() Money {
	return Zero(BRL)
}

// Cents returns the amount in minor units
func (m Money) Cents() int64 {
	return m.cents
}

// Units returns the amount in major units (may lose precision)
func (m Money) Units() float64 {
	return float64(m.cents) / 100
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.cents == 0
}

// Add returns a new Money with the sum of both amounts.
// Returns an error if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{cents: m.cents + other.cents, currency: m.currency}, nil
}

// Subtract returns a new Money with the difference, floored at zero.
// A subtraction that would go negative yields zero, never an error.
// Returns an error if currencies don't match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	cents := m.cents - other.cents
	if cents < 0 {
		cents = 0
	}
	return Money{cents: cents, currency: m.currency}, nil
}

// Multiply returns a new Money multiplied by the given factor,
// rounded to the nearest cent (ties away from zero).
// A product that would go negative floors at zero, like Subtract.
func (m Money) Multiply(factor float64) Money {
	cents := decimal.NewFromInt(m.cents).
		Mul(decimal.NewFromFloat(factor)).
		Round(0).
		IntPart()
	if cents < 0 {
		cents = 0
	}
	return Money{cents: cents, currency: m.currency}
}

// MultiplyByInt returns a new Money multiplied by an integer,
// floored at zero for negative factors.
func (m Money) MultiplyByInt(factor int64) Money {
	cents := m.cents * factor
	if cents < 0 {
		cents = 0
	}
	return Money{cents: cents, currency: m.currency}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.cents == other.cents && m.currency == other.currency
}

// IsGreaterThan returns true if this Money is greater than the other.
// Returns an error if currencies don't match.
func (m Money) IsGreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, ErrCurrencyMismatch
	}
	return m.cents > other.cents, nil
}

// Formatted returns a locale-grouped rendering, e.g. "R$ 1.234,56" for BRL
func (m Money) Formatted() string {
	p := printerFor(m.currency)
	return p.Sprintf("%s %.2f", symbolFor(m.currency), m.Units())
}

// String returns a plain string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.cents/100, m.cents%100, m.currency)
}

func printerFor(c Currency) *message.Printer {
	if c == BRL {
		return message.NewPrinter(language.BrazilianPortuguese)
	}
	return message.NewPrinter(language.English)
}

func symbolFor(c Currency) string {
	switch c {
	case BRL:
		return "R$"
	case USD:
		return "$"
	case EUR:
		return "€"
	default:
		return string(c)
	}
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AmountCents int64    `json:"amount_cents"`
		Currency    Currency `json:"currency"`
	}{
		AmountCents: m.cents,
		Currency:    m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Goes through NewMoney so a
// negative amount is rejected at the boundary.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		AmountCents int64    `json:"amount_cents"`
		Currency    Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoney(v.AmountCents, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the amount in cents; currency lives in a separate column.
func (m Money) Value() (driver.Value, error) {
	return m.cents, nil
}

// Scan implements sql.Scanner for database retrieval. Currency defaults to
// DefaultCurrency if not already set; repositories set it from its own column.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.cents = 0
		if m.currency == "" {
			m.currency = DefaultCurrency
		}
		return nil
	}
	switch v := value.(type) {
	case int64:
		m.cents = v
	case int:
		m.cents = int64(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
