package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"oiltrading/core/formula"
	"oiltrading/internal/errors"
	"oiltrading/internal/metrics"
)

// Evaluator computes benchmark prices from pricing specifications and
// index observations. It is a pure computation over its inputs; one
// evaluator may be shared across goroutines.
type Evaluator struct {
	weights       map[string][]decimal.Decimal
	indexCurrency string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithWeights supplies per-observation WAVG weights keyed by index name.
// Absent weights fall back to uniform weighting, which makes WAVG
// equivalent to AVG; the weighting scheme is an explicit parameter here
// rather than something the evaluator invents.
func WithWeights(weights map[string][]decimal.Decimal) Option {
	return func(e *Evaluator) {
		e.weights = weights
	}
}

// WithAdjustmentCurrencyCheck makes evaluation fail when a formula
// adjustment is denominated in a different currency than the index
// quotation currency. Off by default: the source system treats the
// adjustment currency as informational metadata.
func WithAdjustmentCurrencyCheck(indexCurrency string) Option {
	return func(e *Evaluator) {
		e.indexCurrency = indexCurrency
	}
}

// NewEvaluator creates an evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes the benchmark price for a specification. The prices
// map holds, per index name, the ordered observations for the agreed
// pricing period; the caller guarantees chronological ordering.
// The event date is informational and reserved for trigger-date pricing.
func (e *Evaluator) Evaluate(spec formula.Specification, prices map[string][]decimal.Decimal, eventDate *time.Time) (decimal.Decimal, error) {
	price, err := e.evaluate(spec, prices)
	if err != nil {
		if de, ok := err.(*errors.Error); ok {
			metrics.EvaluationFailuresTotal.WithLabelValues(string(de.Type)).Inc()
		} else {
			metrics.EvaluationFailuresTotal.WithLabelValues(string(errors.TypeInternal)).Inc()
		}
		return decimal.Zero, err
	}
	metrics.EvaluationsTotal.WithLabelValues(string(spec.Method())).Inc()
	return price, nil
}

func (e *Evaluator) evaluate(spec formula.Specification, prices map[string][]decimal.Decimal) (decimal.Decimal, error) {
	switch spec.Kind() {
	case formula.KindCustom:
		return decimal.Zero, errors.NotSupported("evaluating a custom formula: " + spec.Raw())

	case formula.KindFixed:
		price, ok := spec.FixedPrice()
		if !ok {
			return decimal.Zero, errors.NotSupported("evaluating a fixed specification without a price")
		}
		return price, nil

	case formula.KindIndex, formula.KindMixedUnit:
		values, ok := prices[spec.IndexName()]
		if !ok || len(values) == 0 {
			return decimal.Zero, errors.DataUnavailable(spec.IndexName())
		}

		base, err := Aggregate(spec.Method(), values, e.weights[spec.IndexName()])
		if err != nil {
			return decimal.Zero, err
		}
		return e.applyAdjustment(spec, base)
	}

	return decimal.Zero, errors.NotSupported("evaluating specification kind " + string(spec.Kind()))
}

// applyAdjustment folds the formula's premium or discount into the base
// aggregate.
func (e *Evaluator) applyAdjustment(spec formula.Specification, base decimal.Decimal) (decimal.Decimal, error) {
	adjustment, ok := spec.Adjustment()
	if !ok {
		return base, nil
	}
	if e.indexCurrency != "" && adjustment.Currency() != e.indexCurrency {
		return decimal.Zero, errors.Validationf(
			"adjustment currency %s does not match index currency %s",
			adjustment.Currency(), e.indexCurrency)
	}
	if spec.IsDiscount() {
		return base.Sub(adjustment.Amount()), nil
	}
	return base.Add(adjustment.Amount()), nil
}
