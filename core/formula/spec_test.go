package formula

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"oiltrading/core/money"
	"oiltrading/core/quantity"
	"oiltrading/internal/errors"
)

func TestNewFixedRejectsNegativePrice(t *testing.T) {
	if _, err := NewFixed(dec("-1"), "USD", ""); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewFixedRejectsBadCurrency(t *testing.T) {
	if _, err := NewFixed(dec("80"), "DOLLARS", ""); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewIndexRejectsEmptyName(t *testing.T) {
	if _, err := NewIndex("  ", AggAVG, nil, false, ""); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewIndexRejectsNegativeAdjustmentMagnitude(t *testing.T) {
	adj := money.MustNew(dec("-5"), "USD")
	if _, err := NewIndex("BRENT", AggAVG, &adj, false, ""); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewMixedUnitContractualRequiresRatio(t *testing.T) {
	adj := money.MustNew(dec("5"), "USD")

	for _, ratio := range []string{"0", "-7.3"} {
		_, err := NewMixedUnit("BRENT", AggAVG, quantity.BBL, &adj, false, quantity.MT,
			quantity.ContractualConversion, dec(ratio))
		if !errors.IsType(err, errors.TypeValidation) {
			t.Errorf("ratio %s: expected validation error, got %v", ratio, err)
		}
	}
}

func TestNewMixedUnitActualModeNeedsNoRatio(t *testing.T) {
	adj := money.MustNew(dec("5"), "USD")

	spec, err := NewMixedUnit("BRENT", AggAVG, quantity.BBL, &adj, false, quantity.MT,
		quantity.ActualMeasuredQuantities, decimal.Zero)
	if err != nil {
		t.Fatalf("NewMixedUnit failed: %v", err)
	}
	if spec.Kind() != KindMixedUnit {
		t.Errorf("expected mixed-unit kind, got %s", spec.Kind())
	}
	if spec.CalculationMode() != quantity.ActualMeasuredQuantities {
		t.Errorf("unexpected mode: %s", spec.CalculationMode())
	}
}

func TestSetPricingPeriod(t *testing.T) {
	spec, err := NewIndex("BRENT", AggAVG, nil, false, "")
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	withPeriod, err := spec.SetPricingPeriod(start, end)
	if err != nil {
		t.Fatalf("SetPricingPeriod failed: %v", err)
	}

	gotStart, gotEnd, ok := withPeriod.PricingPeriod()
	if !ok || !gotStart.Equal(start) || !gotEnd.Equal(end) {
		t.Errorf("period not set: %v %v %v", gotStart, gotEnd, ok)
	}

	// Original is unchanged: specifications are immutable.
	if _, _, ok := spec.PricingPeriod(); ok {
		t.Error("SetPricingPeriod mutated the receiver")
	}
}

func TestSetPricingPeriodRejectsInvertedRange(t *testing.T) {
	spec, _ := NewIndex("BRENT", AggAVG, nil, false, "")
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	if _, err := spec.SetPricingPeriod(day, day); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("start == end: expected validation error, got %v", err)
	}
	if _, err := spec.SetPricingPeriod(day.AddDate(0, 1, 0), day); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("start > end: expected validation error, got %v", err)
	}
}

func TestSetPricingDays(t *testing.T) {
	spec, _ := NewIndex("BRENT", AggAVG, nil, false, "")

	withDays, err := spec.SetPricingDays(5)
	if err != nil {
		t.Fatalf("SetPricingDays failed: %v", err)
	}
	if withDays.PricingDays() != 5 {
		t.Errorf("expected 5, got %d", withDays.PricingDays())
	}

	if _, err := spec.SetPricingDays(0); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestConstructedFormulaRoundTrip(t *testing.T) {
	adj := money.MustNew(dec("5.00"), "USD")
	built, err := NewIndex("BRENT", AggAVG, &adj, false, "MT")
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	parsed := Parse(built.Formula())
	if parsed.Method() != built.Method() || parsed.IndexName() != built.IndexName() {
		t.Errorf("round trip lost method/index: %s", parsed.Formula())
	}
	gotAdj, ok := parsed.Adjustment()
	if !ok || !gotAdj.Equal(adj) || parsed.IsDiscount() {
		t.Errorf("round trip lost adjustment: %s", parsed.Formula())
	}

	fixed, err := NewFixed(dec("450"), "USD", "MT")
	if err != nil {
		t.Fatalf("NewFixed failed: %v", err)
	}
	reparsed := Parse(fixed.Formula())
	if reparsed.Kind() != KindFixed {
		t.Fatalf("fixed round trip lost kind: %s", reparsed.Formula())
	}
	price, _ := reparsed.FixedPrice()
	if !price.Equal(dec("450")) || reparsed.Currency() != "USD" {
		t.Errorf("fixed round trip lost price: %s", reparsed.Formula())
	}
}

func TestCustomEvaluationIsDeferred(t *testing.T) {
	spec := NewCustom("basis swap per trader sheet")
	if spec.Kind() != KindCustom || spec.Method() != AggCustom {
		t.Errorf("unexpected custom spec: %s %s", spec.Kind(), spec.Method())
	}
	if spec.Formula() != "basis swap per trader sheet" {
		t.Errorf("custom rendering must be the raw text, got %q", spec.Formula())
	}
}
