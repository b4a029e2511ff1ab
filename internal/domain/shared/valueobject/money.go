package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	EUR Currency = "EUR" // Euro (default)
	USD Currency = "USD" // US Dollar
	GBP Currency = "GBP" // British Pound
	CHF Currency = "CHF" // Swiss Franc
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = EUR

// Money is a value object representing a monetary amount in minor units
// (cents). Keeping amounts integral avoids floating point drift in totals;
// fractional intermediate results (quantity x price x tax) are computed with
// decimals and rounded half up to cents at the boundary.
// Money is immutable - all operations return new Money instances.
type Money struct {
	cents    int64
	currency Currency
}

// NewMoney creates a new Money from an amount of cents
func NewMoney(cents int64, currency Currency) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{cents: cents, currency: currency}
}

// NewMoneyEUR creates Money in EUR from cents
func NewMoneyEUR(cents int64) Money {
	return Money{cents: cents, currency: EUR}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{cents: 0, currency: currency}
}

// Cents returns the amount in minor units
func (m Money) Cents() int64 {
	return m.cents
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Add returns the sum of two amounts
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{cents: m.cents + other.cents, currency: m.currency}, nil
}

// Sub returns the difference of two amounts
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{cents: m.cents - other.cents, currency: m.currency}, nil
}

// MulDecimal multiplies the amount by a decimal factor (e.g. a fractional
// quantity) and rounds half up to whole cents.
func (m Money) MulDecimal(factor decimal.Decimal) Money {
	cents := decimal.NewFromInt(m.cents).Mul(factor).Round(0).IntPart()
	return Money{cents: cents, currency: m.currency}
}

// IsZero returns true for a zero amount
func (m Money) IsZero() bool {
	return m.cents == 0
}

// IsNegative returns true for a negative amount
func (m Money) IsNegative() bool {
	return m.cents < 0
}

// GreaterThanOrEqual compares two amounts of the same currency
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.cents >= other.cents
}

// String formats the amount with two decimal places, e.g. "EUR 56.00"
func (m Money) String() string {
	sign := ""
	cents := m.cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", m.currency, sign, cents/100, cents%100)
}

// RoundCents converts a decimal amount of cents to whole cents, half up.
// Used for tax and linked-expense amounts where quantity may be fractional.
func RoundCents(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}
