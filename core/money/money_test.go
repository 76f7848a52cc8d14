package money

import (
	"testing"

	"github.com/shopspring/decimal"

	"oiltrading/internal/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewNormalizesCurrency(t *testing.T) {
	m, err := New(dec("10.50"), "usd")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if m.Currency() != "USD" {
		t.Errorf("expected USD, got %s", m.Currency())
	}
}

func TestNewRejectsBadCurrency(t *testing.T) {
	cases := []string{"", "US", "USDT", "U1D", "美元A"}
	for _, c := range cases {
		if _, err := New(dec("1"), c); err == nil {
			t.Errorf("expected error for currency %q", c)
		} else if !errors.IsType(err, errors.TypeValidation) {
			t.Errorf("expected validation error for %q, got %v", c, err)
		}
	}
}

func TestAddSameCurrency(t *testing.T) {
	a := MustNew(dec("10.25"), "USD")
	b := MustNew(dec("4.75"), "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !sum.Equal(MustNew(dec("15.00"), "USD")) {
		t.Errorf("expected 15.00 USD, got %s", sum)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	a := MustNew(dec("10"), "USD")
	b := MustNew(dec("10"), "EUR")

	if _, err := a.Add(b); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := a.Sub(b); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSub(t *testing.T) {
	a := MustNew(dec("86"), "USD")
	b := MustNew(dec("5"), "USD")

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if diff.Amount().String() != "81" {
		t.Errorf("expected 81, got %s", diff.Amount())
	}
}

func TestMulDiv(t *testing.T) {
	price := MustNew(dec("86"), "USD")

	amount := price.Mul(dec("10000"))
	if amount.Amount().String() != "860000" {
		t.Errorf("expected 860000, got %s", amount.Amount())
	}

	half, err := amount.Div(dec("2"))
	if err != nil {
		t.Fatalf("Div failed: %v", err)
	}
	if half.Amount().String() != "430000" {
		t.Errorf("expected 430000, got %s", half.Amount())
	}
}

func TestDivByZero(t *testing.T) {
	m := MustNew(dec("1"), "USD")
	if _, err := m.Div(decimal.Zero); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSignQueries(t *testing.T) {
	zero := MustNew(decimal.Zero, "GBP")
	pos := MustNew(dec("0.01"), "GBP")
	neg := pos.Neg()

	if !zero.IsZero() || zero.IsPositive() || zero.IsNegative() {
		t.Error("zero sign queries wrong")
	}
	if !pos.IsPositive() || pos.IsZero() {
		t.Error("positive sign queries wrong")
	}
	if !neg.IsNegative() {
		t.Error("negative sign queries wrong")
	}
}

func TestEqualIsStructural(t *testing.T) {
	a := MustNew(dec("5.0"), "USD")
	b := MustNew(dec("5"), "USD")
	c := MustNew(dec("5"), "EUR")

	if !a.Equal(b) {
		t.Error("5.0 USD should equal 5 USD")
	}
	if b.Equal(c) {
		t.Error("5 USD should not equal 5 EUR")
	}
}

func TestFromString(t *testing.T) {
	m, err := FromString("5.00", "usd")
	if err != nil {
		t.Fatalf("FromString failed: %v", err)
	}
	if m.String() != "5 USD" {
		t.Errorf("unexpected rendering: %s", m)
	}

	if _, err := FromString("five", "USD"); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
