// Package money provides a currency-tagged decimal amount.
// Arithmetic between two Money values requires identical currencies;
// sign queries are currency-agnostic.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"oiltrading/internal/errors"
)

// Money is an immutable currency-tagged amount.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money value. The currency code must be exactly three
// letters and is normalized to uppercase.
func New(amount decimal.Decimal, currency string) (Money, error) {
	normalized, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: normalized}, nil
}

// MustNew creates a Money value and panics on an invalid currency.
// Intended for constants and tests.
func MustNew(amount decimal.Decimal, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// FromString creates a Money value from a decimal string and currency.
func FromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, errors.Wrap(errors.TypeValidation, "invalid amount: "+amount, err)
	}
	return New(d, currency)
}

func normalizeCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return "", errors.Validationf("invalid currency code: %q", currency)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", errors.Validationf("invalid currency code: %q", currency)
		}
	}
	return code, nil
}

// Amount returns the decimal amount. There is deliberately no implicit
// numeric coercion: callers must strip the currency explicitly.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the ISO-4217 currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns m + other. Fails when the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errors.Validationf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other. Fails when the currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errors.Validationf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Mul returns m scaled by a dimensionless factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Div returns m divided by a dimensionless divisor.
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, errors.Validation("division by zero")
	}
	return Money{amount: m.amount.Div(divisor), currency: m.currency}, nil
}

// Neg returns m with the amount negated.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the amount is strictly positive.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports whether the amount is strictly negative.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Equal reports structural equality: same amount, same currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String renders "<amount> <CCY>".
func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}
