// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Conversions to and from decimal text go
// through shopspring/decimal so no float ever touches a stored value.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest amount a single transaction may carry (999,999,999.99).
const MaxAmountCents int64 = 99_999_999_999

var maxAmount = decimal.New(MaxAmountCents, -2)

type Money struct {
	Cents int64
}

// MoneyFromDecimal converts d to cents, rounding half away from zero on the
// third decimal place.
//
// Examples:
//
//	12.34  -> 1234
//	12.345 -> 1235
//	12.344 -> 1234
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// ParseMoney parses decimal text. Both dot (12.34) and comma (12,34)
// separators are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, Invalid("transactions.amount_required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, Invalid("transactions.amount_invalid")
	}
	// Out-of-range values would wrap when narrowed to int64 cents.
	if d.Round(2).Abs().GreaterThan(maxAmount) {
		return Money{}, Invalid("transactions.amount_too_large")
	}
	return MoneyFromDecimal(d), nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return Invalid("transactions.amount_positive")
	}
	if m.Cents > MaxAmountCents {
		return Invalid("transactions.amount_too_large")
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns m as a float64 for JSON display only.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// String renders m with exactly two decimals ("1234.50").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
