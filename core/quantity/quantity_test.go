package quantity

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

func TestParseUnit(t *testing.T) {
	cases := []struct {
		in   string
		want Unit
	}{
		{"MT", MT},
		{"mt", MT},
		{" bbl ", BBL},
		{"BBL", BBL},
	}
	for _, c := range cases {
		got, err := ParseUnit(c.in)
		if err != nil {
			t.Fatalf("ParseUnit(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseUnit(%q) = %s, want %s", c.in, got, c.want)
		}
	}

	if _, err := ParseUnit("GAL"); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error for GAL, got %v", err)
	}
}

func TestContractualConversionMTToBBL(t *testing.T) {
	q := New(dec("1000"), MT)

	conv, err := Convert(q, BBL, ContractualConversion, dec("2.0"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if conv.Quantity.Value().String() != "2000" {
		t.Errorf("expected 2000, got %s", conv.Quantity.Value())
	}
	if conv.Quantity.Unit() != BBL {
		t.Errorf("expected BBL, got %s", conv.Quantity.Unit())
	}
	if conv.ModeUsed != ContractualConversion {
		t.Errorf("mode not recorded: %s", conv.ModeUsed)
	}
}

func TestContractualConversionBBLToMT(t *testing.T) {
	q := New(dec("7300"), BBL)

	conv, err := Convert(q, MT, ContractualConversion, dec("7.3"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if conv.Quantity.Value().String() != "1000" {
		t.Errorf("expected 1000, got %s", conv.Quantity.Value())
	}
}

func TestContractualConversionRejectsNonPositiveRatio(t *testing.T) {
	q := New(dec("1000"), MT)

	for _, ratio := range []string{"0", "-1.5"} {
		if _, err := Convert(q, BBL, ContractualConversion, dec(ratio)); !errors.IsType(err, errors.TypeValidation) {
			t.Errorf("ratio %s: expected validation error, got %v", ratio, err)
		}
	}
}

func TestActualModeForbidsSyntheticConversion(t *testing.T) {
	q := New(dec("1000"), MT)

	if _, err := Convert(q, BBL, ActualMeasuredQuantities, decimal.Zero); !errors.IsType(err, errors.TypeNotSupported) {
		t.Errorf("expected not-supported error, got %v", err)
	}
}

func TestSameUnitIsIdentity(t *testing.T) {
	q := New(dec("500.5"), BBL)

	conv, err := Convert(q, BBL, ActualMeasuredQuantities, decimal.Zero)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !conv.Quantity.Value().Equal(q.Value()) || conv.Quantity.Unit() != BBL {
		t.Errorf("identity conversion changed the quantity: %s", conv.Quantity)
	}
}
