// Package quantity provides mass/volume quantities and the conversion
// rules used when a contract prices one unit but measures another.
package quantity

import (
	"strings"

	"github.com/shopspring/decimal"

	"oiltrading/internal/errors"
)

// Unit is a quantity unit.
type Unit string

const (
	// MT is metric tons (mass)
	MT Unit = "MT"

	// BBL is barrels (volume)
	BBL Unit = "BBL"
)

// ParseUnit parses a unit string, case-insensitive.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MT":
		return MT, nil
	case "BBL":
		return BBL, nil
	}
	return "", errors.Validationf("unknown quantity unit: %q", s)
}

// String returns the unit code.
func (u Unit) String() string {
	return string(u)
}

// CalculationMode selects how cross-unit quantities are reconciled.
type CalculationMode string

const (
	// ActualMeasuredQuantities uses whichever unit the physical document
	// (bill of lading, certificate of quantity) reports directly. Both MT
	// and BBL figures must already exist upstream; nothing is synthesized.
	ActualMeasuredQuantities CalculationMode = "ACTUAL_MEASURED"

	// ContractualConversion applies a fixed ratio agreed in the contract,
	// authoritative regardless of any measured cross-unit figure.
	ContractualConversion CalculationMode = "CONTRACTUAL_CONVERSION"
)

// Quantity is an immutable measured amount in a unit.
type Quantity struct {
	value decimal.Decimal
	unit  Unit
}

// New creates a quantity.
func New(value decimal.Decimal, unit Unit) Quantity {
	return Quantity{value: value, unit: unit}
}

// Value returns the numeric value.
func (q Quantity) Value() decimal.Decimal {
	return q.value
}

// Unit returns the unit.
func (q Quantity) Unit() Unit {
	return q.unit
}

// IsZero reports whether the value is zero.
func (q Quantity) IsZero() bool {
	return q.value.IsZero()
}

// String renders "<value> <UNIT>".
func (q Quantity) String() string {
	return q.value.String() + " " + string(q.unit)
}

// Conversion is the outcome of a unit conversion. ModeUsed is recorded
// because the financial outcome differs between modes and auditors need
// to see which one applied.
type Conversion struct {
	Quantity Quantity
	ModeUsed CalculationMode
}

// Convert converts q to the target unit under the given mode.
//
// In ActualMeasuredQuantities mode no synthetic conversion is allowed:
// a same-unit request is the identity, a cross-unit request is an error
// because the measured figure for the target unit must come from the
// physical document, not from arithmetic.
//
// In ContractualConversion mode the ratio (1 MT : ratio BBL) is applied;
// it must be strictly positive.
func Convert(q Quantity, target Unit, mode CalculationMode, ratio decimal.Decimal) (Conversion, error) {
	if q.unit == target {
		return Conversion{Quantity: q, ModeUsed: mode}, nil
	}

	switch mode {
	case ActualMeasuredQuantities:
		return Conversion{}, errors.NotSupported(
			"synthetic " + string(q.unit) + "->" + string(target) + " conversion in actual-measured mode")

	case ContractualConversion:
		if !ratio.IsPositive() {
			return Conversion{}, errors.Validationf("conversion ratio must be positive, got %s", ratio)
		}
		var converted decimal.Decimal
		switch {
		case q.unit == MT && target == BBL:
			converted = q.value.Mul(ratio)
		case q.unit == BBL && target == MT:
			converted = q.value.Div(ratio)
		default:
			return Conversion{}, errors.Validationf("unsupported conversion %s -> %s", q.unit, target)
		}
		return Conversion{
			Quantity: New(converted, target),
			ModeUsed: ContractualConversion,
		}, nil
	}

	return Conversion{}, errors.Validationf("unknown calculation mode: %q", mode)
}
