// Package formula provides pricing specifications: the structured, typed
// form of a human-authored pricing formula such as "AVG(BRENT) + 5.00 USD/MT",
// and the recognizer that classifies formula text into one of them.
package formula

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oiltrading/core/money"
	"oiltrading/core/quantity"
	"oiltrading/internal/errors"
)

// Kind tags the specification variant.
type Kind string

const (
	// KindFixed is a flat price with no floating component
	KindFixed Kind = "FIXED"

	// KindIndex floats against a named market index
	KindIndex Kind = "INDEX"

	// KindMixedUnit floats against an index priced in one unit with an
	// adjustment denominated in another
	KindMixedUnit Kind = "MIXED_UNIT"

	// KindCustom is the unparseable fallback; evaluation is unsupported
	KindCustom Kind = "CUSTOM"
)

// AggregationMethod selects how index observations collapse to one price.
type AggregationMethod string

const (
	AggFixed  AggregationMethod = "FIXED"
	AggAVG    AggregationMethod = "AVG"
	AggMIN    AggregationMethod = "MIN"
	AggMAX    AggregationMethod = "MAX"
	AggFIRST  AggregationMethod = "FIRST"
	AggLAST   AggregationMethod = "LAST"
	AggWAVG   AggregationMethod = "WAVG"
	AggMEDIAN AggregationMethod = "MEDIAN"
	AggMODE   AggregationMethod = "MODE"
	AggCustom AggregationMethod = "CUSTOM"
)

// ParseAggregationMethod parses a method name, case-insensitive.
func ParseAggregationMethod(s string) (AggregationMethod, error) {
	switch AggregationMethod(strings.ToUpper(strings.TrimSpace(s))) {
	case AggAVG:
		return AggAVG, nil
	case AggMIN:
		return AggMIN, nil
	case AggMAX:
		return AggMAX, nil
	case AggFIRST:
		return AggFIRST, nil
	case AggLAST:
		return AggLAST, nil
	case AggWAVG:
		return AggWAVG, nil
	case AggMEDIAN:
		return AggMEDIAN, nil
	case AggMODE:
		return AggMODE, nil
	}
	return "", errors.Validationf("unknown aggregation method: %q", s)
}

// Specification is an immutable, typed pricing specification. A
// specification is created once from a contract's agreed formula text;
// changing the commercial formula creates a new specification.
type Specification struct {
	kind   Kind
	method AggregationMethod

	// fixed variant
	price    decimal.Decimal
	hasPrice bool
	currency string

	// index variants
	index          string
	adjustment     money.Money
	hasAdjustment  bool
	discount       bool
	adjustmentUnit string

	// mixed-unit variant
	benchmarkUnit   quantity.Unit
	calculationMode quantity.CalculationMode
	conversionRatio decimal.Decimal

	// optional pricing window
	pricingDays int
	periodStart time.Time
	periodEnd   time.Time

	raw string
}

// NewFixed creates a fixed-price specification. Unit is the optional
// quotation unit suffix ("MT", "BBL"); empty means unspecified.
func NewFixed(price decimal.Decimal, currency, unit string) (Specification, error) {
	if price.IsNegative() {
		return Specification{}, errors.Validationf("invalid price: %s", price)
	}
	m, err := money.New(price, currency)
	if err != nil {
		return Specification{}, err
	}
	return Specification{
		kind:           KindFixed,
		method:         AggFixed,
		price:          price,
		hasPrice:       true,
		currency:       m.Currency(),
		adjustmentUnit: strings.ToUpper(strings.TrimSpace(unit)),
	}, nil
}

// NewIndex creates an index-linked specification. The adjustment, when
// present, is a non-negative magnitude; discount selects whether it is
// subtracted rather than added at evaluation time.
func NewIndex(index string, method AggregationMethod, adjustment *money.Money, discount bool, adjustmentUnit string) (Specification, error) {
	name := strings.ToUpper(strings.TrimSpace(index))
	if name == "" {
		return Specification{}, errors.Validation("invalid index: name is empty")
	}
	spec := Specification{
		kind:           KindIndex,
		method:         method,
		index:          name,
		adjustmentUnit: strings.ToUpper(strings.TrimSpace(adjustmentUnit)),
	}
	if adjustment != nil {
		if adjustment.IsNegative() {
			return Specification{}, errors.Validationf("adjustment magnitude must not be negative: %s", adjustment)
		}
		spec.adjustment = *adjustment
		spec.hasAdjustment = true
		spec.discount = discount
	}
	return spec, nil
}

// NewMixedUnit creates a specification whose index is quoted in one unit
// while the adjustment is denominated in another. In contractual-conversion
// mode the ratio (1 MT : ratio BBL) must be strictly positive; its absence
// is a construction error.
func NewMixedUnit(
	index string,
	method AggregationMethod,
	benchmarkUnit quantity.Unit,
	adjustment *money.Money,
	discount bool,
	adjustmentUnit quantity.Unit,
	mode quantity.CalculationMode,
	ratio decimal.Decimal,
) (Specification, error) {
	base, err := NewIndex(index, method, adjustment, discount, string(adjustmentUnit))
	if err != nil {
		return Specification{}, err
	}
	if mode == quantity.ContractualConversion && !ratio.IsPositive() {
		return Specification{}, errors.Validationf(
			"contractual conversion requires a positive ratio, got %s", ratio)
	}
	base.kind = KindMixedUnit
	base.benchmarkUnit = benchmarkUnit
	base.calculationMode = mode
	base.conversionRatio = ratio
	return base, nil
}

// NewCustom wraps unrecognized formula text. Never fails; evaluation of
// the result fails instead.
func NewCustom(raw string) Specification {
	return Specification{
		kind:   KindCustom,
		method: AggCustom,
		raw:    raw,
	}
}

// Kind returns the specification variant.
func (s Specification) Kind() Kind {
	return s.kind
}

// Method returns the aggregation method.
func (s Specification) Method() AggregationMethod {
	return s.method
}

// IndexName returns the market index name for index-linked variants.
func (s Specification) IndexName() string {
	return s.index
}

// FixedPrice returns the fixed price and whether one is present.
func (s Specification) FixedPrice() (decimal.Decimal, bool) {
	return s.price, s.hasPrice
}

// Currency returns the fixed-price currency, empty for index variants
// without one.
func (s Specification) Currency() string {
	if s.hasAdjustment {
		return s.adjustment.Currency()
	}
	return s.currency
}

// Adjustment returns the adjustment magnitude and whether one is present.
func (s Specification) Adjustment() (money.Money, bool) {
	return s.adjustment, s.hasAdjustment
}

// IsDiscount reports whether the adjustment is subtracted.
func (s Specification) IsDiscount() bool {
	return s.discount
}

// AdjustmentUnit returns the optional per-unit suffix of the price or
// adjustment ("MT", "BBL"), empty when unspecified.
func (s Specification) AdjustmentUnit() string {
	return s.adjustmentUnit
}

// BenchmarkUnit returns the index quotation unit for mixed-unit variants.
func (s Specification) BenchmarkUnit() quantity.Unit {
	return s.benchmarkUnit
}

// CalculationMode returns the quantity reconciliation mode for
// mixed-unit variants.
func (s Specification) CalculationMode() quantity.CalculationMode {
	return s.calculationMode
}

// ConversionRatio returns the contractual MT:BBL ratio.
func (s Specification) ConversionRatio() decimal.Decimal {
	return s.conversionRatio
}

// PricingDays returns the agreed number of pricing days, zero when unset.
func (s Specification) PricingDays() int {
	return s.pricingDays
}

// PricingPeriod returns the agreed pricing window and whether one is set.
func (s Specification) PricingPeriod() (start, end time.Time, ok bool) {
	return s.periodStart, s.periodEnd, !s.periodStart.IsZero() && !s.periodEnd.IsZero()
}

// Raw returns the original formula text the specification was parsed
// from; empty for specifications built programmatically.
func (s Specification) Raw() string {
	return s.raw
}

// SetPricingPeriod returns a copy of the specification with the pricing
// window set. Fails when start is not strictly before end.
func (s Specification) SetPricingPeriod(start, end time.Time) (Specification, error) {
	if !start.Before(end) {
		return Specification{}, errors.Validationf(
			"pricing period start %s must precede end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	s.periodStart = start
	s.periodEnd = end
	return s, nil
}

// SetPricingDays returns a copy with the agreed pricing-day count set.
func (s Specification) SetPricingDays(days int) (Specification, error) {
	if days <= 0 {
		return Specification{}, errors.Validationf("pricing days must be positive, got %d", days)
	}
	s.pricingDays = days
	return s, nil
}

// Formula renders the canonical text of the specification. Parsing the
// rendering yields a specification with the same method, index, and net
// adjustment.
func (s Specification) Formula() string {
	switch s.kind {
	case KindFixed:
		var b strings.Builder
		b.WriteString(s.price.String())
		b.WriteString(" ")
		b.WriteString(s.currency)
		if s.adjustmentUnit != "" {
			b.WriteString("/")
			b.WriteString(s.adjustmentUnit)
		}
		return b.String()

	case KindIndex, KindMixedUnit:
		var b strings.Builder
		b.WriteString(string(s.method))
		b.WriteString("(")
		b.WriteString(s.index)
		b.WriteString(")")
		if s.hasAdjustment {
			if s.discount {
				b.WriteString(" - ")
			} else {
				b.WriteString(" + ")
			}
			b.WriteString(s.adjustment.Amount().String())
			b.WriteString(" ")
			b.WriteString(s.adjustment.Currency())
			if s.adjustmentUnit != "" {
				b.WriteString("/")
				b.WriteString(s.adjustmentUnit)
			}
		}
		return b.String()

	default:
		return s.raw
	}
}

// String implements fmt.Stringer.
func (s Specification) String() string {
	return s.Formula()
}
