// Package pricing evaluates pricing specifications against market index
// observations to produce the benchmark price a settlement is computed
// from.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"oiltrading/core/formula"
	"oiltrading/internal/errors"
)

// Aggregate collapses an ordered, non-empty series of observations to a
// single price using the given method. Weights apply only to WAVG and
// may be nil, in which case WAVG weights uniformly (equivalent to AVG).
func Aggregate(method formula.AggregationMethod, values, weights []decimal.Decimal) (decimal.Decimal, error) {
	if len(values) == 0 {
		return decimal.Zero, errors.Validation("cannot aggregate an empty series")
	}

	switch method {
	case formula.AggAVG:
		return mean(values), nil
	case formula.AggMIN:
		return extremum(values, func(a, b decimal.Decimal) bool { return a.LessThan(b) }), nil
	case formula.AggMAX:
		return extremum(values, func(a, b decimal.Decimal) bool { return a.GreaterThan(b) }), nil
	case formula.AggFIRST:
		return values[0], nil
	case formula.AggLAST:
		return values[len(values)-1], nil
	case formula.AggWAVG:
		return weightedMean(values, weights)
	case formula.AggMEDIAN:
		return median(values), nil
	case formula.AggMODE:
		return mode(values), nil
	}

	return decimal.Zero, errors.NotSupported("aggregation method " + string(method))
}

func mean(values []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

func extremum(values []decimal.Decimal, better func(a, b decimal.Decimal) bool) decimal.Decimal {
	best := values[0]
	for _, v := range values[1:] {
		if better(v, best) {
			best = v
		}
	}
	return best
}

// weightedMean computes sum(w*v)/sum(w). Nil weights mean uniform
// weighting; when supplied, the weight series must match the value
// series element for element.
func weightedMean(values, weights []decimal.Decimal) (decimal.Decimal, error) {
	if weights == nil {
		return mean(values), nil
	}
	if len(weights) != len(values) {
		return decimal.Zero, errors.Validationf(
			"weight count %d does not match observation count %d", len(weights), len(values))
	}

	weightedSum := decimal.Zero
	totalWeight := decimal.Zero
	for i, v := range values {
		if weights[i].IsNegative() {
			return decimal.Zero, errors.Validationf("negative weight at position %d: %s", i, weights[i])
		}
		weightedSum = weightedSum.Add(v.Mul(weights[i]))
		totalWeight = totalWeight.Add(weights[i])
	}
	if totalWeight.IsZero() {
		return decimal.Zero, errors.Validation("weights sum to zero")
	}
	return weightedSum.Div(totalWeight), nil
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// mode returns the most frequent exact value. Ties break toward the
// value encountered first, so grouping must stay insertion-ordered.
func mode(values []decimal.Decimal) decimal.Decimal {
	type group struct {
		value decimal.Decimal
		count int
	}
	index := make(map[string]int)
	var groups []group

	for _, v := range values {
		key := v.String()
		if i, ok := index[key]; ok {
			groups[i].count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, group{value: v, count: 1})
	}

	best := groups[0]
	for _, g := range groups[1:] {
		if g.count > best.count {
			best = g
		}
	}
	return best.value
}
